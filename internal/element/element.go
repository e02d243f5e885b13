/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

// This file defines the canvas element union. Element is sealed: the only
// implementations are *Text, *Mockup and *Visual, and callers dispatch with
// an exhaustive type switch.

import (
	"math"

	"screenshotstudio/internal/geom"
)

// Kind is the JSON discriminator of an element.
type Kind string

const (
	KindText   Kind = "text"
	KindMockup Kind = "mockup"
	KindVisual Kind = "visual"
)

// Scale bounds for mockups and visuals.
const (
	MinScale = 0.2
	MaxScale = 2.0
)

// Text defaults applied by Normalize.
const (
	DefaultFontFamily = "Inter"
	DefaultFontSize   = 64
	DefaultFontWeight = 400
	DefaultLineHeight = 1.2
	DefaultTextColor  = "#FFFFFF"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Position is the element anchor in canvas pixels. For mockups it is an
// offset from the canvas center.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) Pt() geom.Pt { return geom.Pt{X: p.X, Y: p.Y} }

// Common carries the fields every element has.
type Common struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	// Rotation is clockwise degrees in [0, 360).
	Rotation float64 `json:"rotation"`
	ZIndex   int     `json:"zIndex"`
}

// Element is one item on a screenshot panel.
type Element interface {
	Base() *Common
	Kind() Kind
	// Normalize clamps ranges and fills defaults in place.
	Normalize()
	// Clone returns a deep copy.
	Clone() Element
	isElement()
}

func (c *Common) Base() *Common { return c }

// SetRotation stores deg normalised to [0, 360).
func (c *Common) SetRotation(deg float64) { c.Rotation = geom.NormalizeDeg(deg) }

// Text is an overlay text block.
type Text struct {
	Common
	Text          string  `json:"text"`
	FontFamily    string  `json:"fontFamily"`
	FontSize      float64 `json:"fontSize"`
	FontWeight    int     `json:"fontWeight"`
	IsBold        bool    `json:"isBold"`
	Color         string  `json:"color"`
	Align         Align   `json:"align"`
	LetterSpacing float64 `json:"letterSpacing"`
	LineHeight    float64 `json:"lineHeight"`
	// Width is the wrap width; 0 means the device default.
	Width float64 `json:"width,omitempty"`
}

func (*Text) Kind() Kind  { return KindText }
func (*Text) isElement() {}

// Bold reports whether the text should use a bold face.
func (t *Text) Bold() bool { return t.IsBold || t.FontWeight >= 600 }

func (t *Text) Normalize() {
	t.SetRotation(t.Rotation)
	if t.FontFamily == "" {
		t.FontFamily = DefaultFontFamily
	}
	if !(t.FontSize > 0) {
		t.FontSize = DefaultFontSize
	}
	if t.FontWeight <= 0 {
		t.FontWeight = DefaultFontWeight
		if t.IsBold {
			t.FontWeight = 700
		}
	}
	if t.Color == "" {
		t.Color = DefaultTextColor
	}
	switch t.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		t.Align = AlignCenter
	}
	if !(t.LineHeight > 0) {
		t.LineHeight = DefaultLineHeight
	}
	if math.IsNaN(t.LetterSpacing) || math.IsInf(t.LetterSpacing, 0) {
		t.LetterSpacing = 0
	}
	if t.Width < 0 || math.IsNaN(t.Width) {
		t.Width = 0
	}
}

func (t *Text) Clone() Element {
	c := *t
	return &c
}

// Mockup is the device frame holding the screenshot.
type Mockup struct {
	Common
	ScreenshotRef string  `json:"screenshotRef"`
	BaseWidth     float64 `json:"baseWidth"`
	BaseHeight    float64 `json:"baseHeight"`
	Scale         float64 `json:"scale"`
	CornerRadius  float64 `json:"cornerRadius"`
	InnerPadding  float64 `json:"innerPadding"`
}

func (*Mockup) Kind() Kind  { return KindMockup }
func (*Mockup) isElement() {}

// SetScale stores s clamped to [MinScale, MaxScale].
func (m *Mockup) SetScale(s float64) { m.Scale = ClampScale(s) }

func (m *Mockup) Normalize() {
	m.SetRotation(m.Rotation)
	if m.Scale == 0 {
		m.Scale = 1
	}
	m.SetScale(m.Scale)
	if m.BaseWidth < 0 {
		m.BaseWidth = 0
	}
	if m.BaseHeight < 0 {
		m.BaseHeight = 0
	}
}

func (m *Mockup) Clone() Element {
	c := *m
	return &c
}

// Visual is a free image placed on the canvas, anchored at its center.
type Visual struct {
	Common
	ImageURL string  `json:"imageUrl"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Scale    float64 `json:"scale"`
	Opacity  float64 `json:"opacity"`
}

func (*Visual) Kind() Kind  { return KindVisual }
func (*Visual) isElement() {}

func (v *Visual) SetScale(s float64) { v.Scale = ClampScale(s) }

func (v *Visual) Normalize() {
	v.SetRotation(v.Rotation)
	if v.Scale == 0 {
		v.Scale = 1
	}
	v.SetScale(v.Scale)
	v.Opacity = geom.Clamp(v.Opacity, 0, 1)
}

func (v *Visual) Clone() Element {
	c := *v
	return &c
}

// Scalable is implemented by the kinds that have resize handles.
type Scalable interface {
	Element
	CurrentScale() float64
	SetScale(float64)
}

func (m *Mockup) CurrentScale() float64 { return m.Scale }
func (v *Visual) CurrentScale() float64 { return v.Scale }

// ClampScale bounds s to [MinScale, MaxScale]; NaN maps to MinScale.
func ClampScale(s float64) float64 { return geom.Clamp(s, MinScale, MaxScale) }
