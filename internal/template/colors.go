/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package template

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"screenshotstudio/internal/palette"
)

// Colors resolves color tokens against one accent and optional per-image
// overrides.
type Colors struct {
	Accent    color.NRGBA
	Overrides map[string]string
}

// NewColors builds a resolver; accent is normalised first.
func NewColors(accent string, overrides map[string]string) Colors {
	return Colors{Accent: palette.MustParse(palette.NormalizeAccent(accent)), Overrides: overrides}
}

// Resolve evaluates a color value:
//
//	#hex, rgb(), rgba()      literal
//	accent                   the accent color
//	accentLighten(p)         accent mixed with p% white
//	accentDarken(p)          accent mixed with p% black
//	accentAlpha(p)           accent at p% opacity
//	{{name}}                 Overrides[name] when set, else accent
//
// An empty value is the accent. A value that cannot be read yields the
// accent and an error describing it.
func (c Colors) Resolve(v string) (color.NRGBA, error) {
	s := strings.TrimSpace(v)
	if name, ok := placeholder(s); ok {
		o, ok := c.Overrides[name]
		if !ok || strings.TrimSpace(o) == "" {
			return c.Accent, nil
		}
		if _, nested := placeholder(strings.TrimSpace(o)); nested {
			return c.Accent, fmt.Errorf("color override %q is itself a placeholder", name)
		}
		s = strings.TrimSpace(o)
	}
	if s == "" || strings.EqualFold(s, "accent") {
		return c.Accent, nil
	}
	if fn, arg, ok := call(s); ok && strings.HasPrefix(strings.ToLower(fn), "accent") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(arg), "%"), 64)
		if err != nil {
			return c.Accent, fmt.Errorf("color %q: %w", v, err)
		}
		switch strings.ToLower(fn) {
		case "accentlighten":
			return palette.Lighten(c.Accent, pct), nil
		case "accentdarken":
			return palette.Darken(c.Accent, pct), nil
		case "accentalpha":
			return palette.WithAlpha(c.Accent, pct), nil
		}
		return c.Accent, fmt.Errorf("color %q: unknown accent function", v)
	}
	col, err := palette.Parse(s)
	if err != nil {
		return c.Accent, fmt.Errorf("color %q: %w", v, err)
	}
	return col, nil
}

func placeholder(s string) (string, bool) {
	if strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") && len(s) > 4 {
		return strings.TrimSpace(s[2 : len(s)-2]), true
	}
	return "", false
}

func call(s string) (fn, arg string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}

// Expand replaces {{name}} placeholders in a text value from vars. Unknown
// names expand to the empty string.
func Expand(s string, vars map[string]string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, "{{")
		if i < 0 {
			b.WriteString(s)
			break
		}
		j := strings.Index(s[i:], "}}")
		if j < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		b.WriteString(vars[strings.TrimSpace(s[i+2:i+j])])
		s = s[i+j+2:]
	}
	return b.String()
}
