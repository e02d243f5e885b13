/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
	"screenshotstudio/internal/palette"
	"screenshotstudio/internal/textlayout"
)

// Band offsets of a line's hit area relative to its baseline, in font sizes.
const (
	BandAbove = 0.8
	BandBelow = 0.2
)

type VAlign string

const (
	VAlignTop    VAlign = "top"
	VAlignMiddle VAlign = "middle"
	VAlignBottom VAlign = "bottom"
)

// TextSpec is a resolved text block: every value is in canvas pixels.
// Element text and template text layers both lower to a TextSpec.
type TextSpec struct {
	Text          string
	Face          font.Face
	Size          float64
	Align         element.Align
	VAlign        VAlign
	LetterSpacing float64
	LineHeight    float64 // px between baselines
	Width         float64 // wrap width
	Anchor        geom.Pt
	Rotation      float64
	Color         color.Color
}

// TextLine is one wrapped line placed in the unrotated frame.
type TextLine struct {
	Text     string
	X        float64 // left edge
	Baseline float64
	Width    float64 // measured, letter spacing included
}

// TextLayout is the placed result of a TextSpec.
type TextLayout struct {
	Spec  TextSpec
	Lines []TextLine
}

var white = color.NRGBA{255, 255, 255, 255}

// TextSpecFor resolves an element's text against the device metrics. The
// stored font size and letter spacing are multiplied by the preset font
// scale; a zero width falls back to the preset default wrap width.
func TextSpecFor(t *element.Text, m Metrics) TextSpec {
	scale := m.Preset.FontScale
	if scale <= 0 {
		scale = 1
	}
	size := t.FontSize * scale
	if !(size > 0) {
		size = element.DefaultFontSize * scale
	}
	lh := t.LineHeight
	if !(lh > 0) {
		lh = element.DefaultLineHeight
	}
	width := t.Width
	if !(width > 0) {
		width = m.Preset.DefaultTextWidth
	}
	return TextSpec{
		Text:          t.Text,
		Face:          m.faces().Face(t.FontFamily, t.Bold(), size),
		Size:          size,
		Align:         t.Align,
		VAlign:        VAlignTop,
		LetterSpacing: t.LetterSpacing * scale,
		LineHeight:    size * lh,
		Width:         width,
		Anchor:        t.Position.Pt(),
		Rotation:      t.Rotation,
		Color:         palette.ParseOr(t.Color, white),
	}
}

// LayoutText wraps and positions spec's lines. The anchor x is the left
// edge, center or right edge depending on Align. The anchor y is the first
// baseline for VAlignTop, the middle line's baseline for VAlignMiddle and
// the last baseline for VAlignBottom.
func LayoutText(spec TextSpec) TextLayout {
	lines := textlayout.Wrap(spec.Face, spec.Text, spec.Width, spec.LetterSpacing)
	n := float64(len(lines))
	first := spec.Anchor.Y
	switch spec.VAlign {
	case VAlignMiddle:
		first -= (n - 1) * spec.LineHeight / 2
	case VAlignBottom:
		first -= (n - 1) * spec.LineHeight
	}
	out := TextLayout{Spec: spec, Lines: make([]TextLine, 0, len(lines))}
	for i, ln := range lines {
		w := textlayout.SpacedWidth(spec.Face, ln, spec.LetterSpacing)
		x := spec.Anchor.X
		switch spec.Align {
		case element.AlignCenter:
			x -= w / 2
		case element.AlignRight:
			x -= w
		}
		out.Lines = append(out.Lines, TextLine{Text: ln, X: x, Baseline: first + float64(i)*spec.LineHeight, Width: w})
	}
	return out
}

// LineBand is the unrotated hit band of line: BandAbove×size above the
// baseline to BandBelow×size below it.
func (l TextLayout) LineBand(line TextLine) geom.Rect {
	return geom.R(line.X, line.Baseline-BandAbove*l.Spec.Size, line.Width, (BandAbove+BandBelow)*l.Spec.Size)
}

// Bounds is the union of all line bands in the unrotated frame.
func (l TextLayout) Bounds() geom.Rect {
	if len(l.Lines) == 0 {
		return geom.R(l.Spec.Anchor.X, l.Spec.Anchor.Y, 0, 0)
	}
	r := l.LineBand(l.Lines[0])
	for _, ln := range l.Lines[1:] {
		r = r.Union(l.LineBand(ln))
	}
	return r
}

// PaintText draws a laid out block, rotated about its anchor.
func PaintText(dc *gg.Context, l TextLayout) {
	dc.Push()
	defer dc.Pop()
	if l.Spec.Rotation != 0 {
		dc.RotateAbout(geom.Radians(l.Spec.Rotation), l.Spec.Anchor.X, l.Spec.Anchor.Y)
	}
	dc.SetFontFace(l.Spec.Face)
	c := l.Spec.Color
	if c == nil {
		c = white
	}
	dc.SetColor(c)
	for _, ln := range l.Lines {
		if ln.Text == "" {
			continue
		}
		if l.Spec.LetterSpacing == 0 {
			dc.DrawString(ln.Text, ln.X, ln.Baseline)
			continue
		}
		for _, g := range textlayout.CharOffsets(l.Spec.Face, ln.Text, l.Spec.LetterSpacing) {
			dc.DrawString(g.Text, ln.X+g.X, ln.Baseline)
		}
	}
}
