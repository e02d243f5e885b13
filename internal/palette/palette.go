/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package palette parses and derives colors used by backgrounds, text and
// template color tokens.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// DefaultAccent is used whenever accent extraction or parsing fails.
const DefaultAccent = "#5B6CFF"

var ErrBadColor = errors.New("palette: unrecognized color")

var named = map[string]color.NRGBA{
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"transparent": {0, 0, 0, 0},
}

// Parse accepts #rgb, #rrggbb, #rrggbbaa, rgb(r,g,b), rgba(r,g,b,a) and a few names.
func Parse(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[v]; ok {
		return c, nil
	}
	switch {
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:])
	case strings.HasPrefix(v, "rgba(") && strings.HasSuffix(v, ")"):
		return parseFunc(v[5:len(v)-1], true)
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		return parseFunc(v[4:len(v)-1], false)
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

// ParseOr returns def when s does not parse.
func ParseOr(s string, def color.NRGBA) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		return def
	}
	return c
}

// MustParse is for package-level constants only.
func MustParse(s string) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(h string) (color.NRGBA, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: #%s", ErrBadColor, h)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: #%s", ErrBadColor, h)
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

func parseFunc(body string, withAlpha bool) (color.NRGBA, error) {
	parts := strings.Split(body, ",")
	want := 3
	if withAlpha {
		want = 4
	}
	if len(parts) != want {
		return color.NRGBA{}, fmt.Errorf("%w: expected %d components", ErrBadColor, want)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %v", ErrBadColor, err)
		}
		ch[i] = to8(f)
	}
	a := uint8(255)
	if withAlpha {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %v", ErrBadColor, err)
		}
		a = to8(f * 255)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

func to8(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, f))))
}

// Hex formats c as #RRGGBB (alpha dropped).
func Hex(c color.NRGBA) string { return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B) }

// HexAlpha formats c as #RRGGBB, or #RRGGBBAA when c is not opaque.
func HexAlpha(c color.NRGBA) string {
	if c.A == 255 {
		return Hex(c)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Interpolate blends each channel linearly: t=0 yields a, t=1 yields b.
// t is clamped to [0,1].
func Interpolate(a, b color.NRGBA, t float64) color.NRGBA {
	if t <= 0 || math.IsNaN(t) {
		return a
	}
	if t >= 1 {
		return b
	}
	lerp := func(x, y uint8) uint8 { return to8(float64(x) + (float64(y)-float64(x))*t) }
	return color.NRGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

// Lighten mixes pct percent of white into c.
func Lighten(c color.NRGBA, pct float64) color.NRGBA {
	out := Interpolate(c, white, pct/100)
	out.A = c.A
	return out
}

// Darken mixes pct percent of black into c.
func Darken(c color.NRGBA, pct float64) color.NRGBA {
	out := Interpolate(c, black, pct/100)
	out.A = c.A
	return out
}

// WithAlpha sets the alpha channel to pct percent.
func WithAlpha(c color.NRGBA, pct float64) color.NRGBA {
	c.A = to8(pct / 100 * 255)
	return c
}

// NormalizeAccent returns s as an upper-case 6-digit hex color, or DefaultAccent.
func NormalizeAccent(s string) string {
	v := strings.TrimSpace(s)
	if v == "" {
		return DefaultAccent
	}
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	if len(v) != 4 && len(v) != 7 {
		return DefaultAccent
	}
	c, err := parseHex(v[1:])
	if err != nil {
		return DefaultAccent
	}
	return Hex(c)
}
