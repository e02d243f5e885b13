/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Measurement and line breaking. Every width here goes through
// font.MeasureString on the same face the painter draws with, so wrapped
// lines, drawn glyphs and hit bands agree to the pixel.

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Metrics are face metrics in pixels.
type Metrics struct {
	Ascent, Descent, Height float64
}

// FaceMetrics returns the metrics of face in pixels.
func FaceMetrics(face font.Face) Metrics {
	m := face.Metrics()
	return Metrics{Ascent: fx(m.Ascent), Descent: fx(m.Descent), Height: fx(m.Height)}
}

func fx(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Measure is the natural advance of s in pixels, kerning included.
func Measure(face font.Face, s string) float64 {
	return fx(font.MeasureString(face, s))
}

// SpacedWidth is the width of s with letterSpacing px between adjacent
// characters. No spacing is added after the last character.
func SpacedWidth(face font.Face, s string, letterSpacing float64) float64 {
	w := Measure(face, s)
	if n := utf8.RuneCountInString(s); n > 1 {
		w += letterSpacing * float64(n-1)
	}
	return w
}

// Glyph is one character of a line and its x offset from the line start.
type Glyph struct {
	Text string
	X    float64
}

// CharOffsets positions each character of s at the measured advance of the
// preceding prefix plus i×letterSpacing. Measuring prefixes rather than
// single glyphs keeps the kerning the face applies within the run.
func CharOffsets(face font.Face, s string, letterSpacing float64) []Glyph {
	out := make([]Glyph, 0, utf8.RuneCountInString(s))
	i := 0
	for pos, r := range s {
		out = append(out, Glyph{Text: string(r), X: Measure(face, s[:pos]) + float64(i)*letterSpacing})
		i++
	}
	return out
}

// Wrap breaks text into lines no wider than maxWidth (letter spacing
// included). Manual '\n' always breaks; a single word wider than maxWidth
// gets its own line and is never split. maxWidth <= 0 disables wrapping.
func Wrap(face font.Face, text string, maxWidth, letterSpacing float64) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		if maxWidth <= 0 {
			lines = append(lines, strings.Join(words, " "))
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			cand := cur + " " + w
			if SpacedWidth(face, cand, letterSpacing) <= maxWidth {
				cur = cand
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		lines = append(lines, cur)
	}
	return lines
}

// Case is a text transform applied before wrapping.
type Case string

const (
	CaseNone       Case = ""
	CaseUpper      Case = "uppercase"
	CaseLower      Case = "lowercase"
	CaseCapitalize Case = "capitalize"
)

// ApplyCase transforms s. Capitalize upper-cases the first letter of every
// whitespace separated word and leaves the rest untouched.
func ApplyCase(s string, c Case) string {
	switch c {
	case CaseUpper:
		return strings.ToUpper(s)
	case CaseLower:
		return strings.ToLower(s)
	case CaseCapitalize:
		var b strings.Builder
		b.Grow(len(s))
		start := true
		for _, r := range s {
			if unicode.IsSpace(r) {
				start = true
				b.WriteRune(r)
				continue
			}
			if start {
				r = unicode.ToUpper(r)
				start = false
			}
			b.WriteRune(r)
		}
		return b.String()
	default:
		return s
	}
}
