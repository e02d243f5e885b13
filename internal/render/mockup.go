/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"screenshotstudio/internal/assets"
	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
)

var (
	bezelColor       = color.NRGBA{0x11, 0x11, 0x14, 255}
	placeholderColor = color.NRGBA{0xE5, 0xE7, 0xEB, 255}
)

// MockupGeometry is the resolved device frame placement.
type MockupGeometry struct {
	Rect         geom.Rect
	CornerRadius float64
	InnerPadding float64
	Rotation     float64
}

// MockupRect places a mockup: base size times scale, centered on the canvas
// center shifted by the preset offset and the element position. Zero base
// size, radius or padding fall back to the preset's values; radius and
// padding scale with the mockup.
func MockupRect(mk *element.Mockup, m Metrics) MockupGeometry {
	pm := m.Preset.Mockup
	bw, bh := mk.BaseWidth, mk.BaseHeight
	if !(bw > 0) || !(bh > 0) {
		bw, bh = pm.BaseWidth, pm.BaseHeight
	}
	radius := mk.CornerRadius
	if !(radius > 0) {
		radius = pm.CornerRadius
	}
	pad := mk.InnerPadding
	if !(pad > 0) {
		pad = pm.InnerPadding
	}
	s := element.ClampScale(mk.Scale)
	c := geom.Pt{
		X: float64(m.Preset.CanvasWidth)/2 + pm.OffsetX + mk.Position.X,
		Y: float64(m.Preset.CanvasHeight)/2 + pm.OffsetY + mk.Position.Y,
	}
	return MockupGeometry{
		Rect:         geom.RectCentered(c, bw*s, bh*s),
		CornerRadius: radius * s,
		InnerPadding: pad * s,
		Rotation:     mk.Rotation,
	}
}

// ComposeMockup renders the device at w×h: the screenshot clipped into a
// rounded rect inset by padding, with the frame artwork drawn on top. A nil
// frame draws a plain bezel underneath; a nil screenshot draws a neutral
// placeholder.
func ComposeMockup(screenshot, frame image.Image, w, h int, radius, padding float64) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dc := gg.NewContext(w, h)
	fw, fh := float64(w), float64(h)
	if frame == nil {
		dc.SetColor(bezelColor)
		dc.DrawRoundedRectangle(0, 0, fw, fh, radius+padding)
		dc.Fill()
	}
	inner := geom.R(0, 0, fw, fh).Inset(padding, padding)
	iw, ih := int(math.Round(inner.W)), int(math.Round(inner.H))
	if iw > 0 && ih > 0 {
		dc.DrawRoundedRectangle(inner.X, inner.Y, inner.W, inner.H, radius)
		dc.Clip()
		if screenshot != nil {
			fitted := imaging.Fill(screenshot, iw, ih, imaging.Top, imaging.Lanczos)
			dc.DrawImage(fitted, int(math.Round(inner.X)), int(math.Round(inner.Y)))
		} else {
			dc.SetColor(placeholderColor)
			dc.DrawRectangle(inner.X, inner.Y, inner.W, inner.H)
			dc.Fill()
		}
		dc.ResetClip()
	}
	if frame != nil {
		dc.DrawImage(assets.Resample(frame, w, h), 0, 0)
	}
	return dc.Image()
}

// PaintMockup composes the mockup at its rect size and draws it rotated
// about the rect center.
func PaintMockup(dc *gg.Context, g MockupGeometry, screenshot, frame image.Image) {
	w, h := int(math.Round(g.Rect.W)), int(math.Round(g.Rect.H))
	img := ComposeMockup(screenshot, frame, w, h, g.CornerRadius, g.InnerPadding)
	drawCentered(dc, img, g.Rect.Center(), g.Rotation)
}

// drawCentered draws img centered on c, rotated by deg about c.
func drawCentered(dc *gg.Context, img image.Image, c geom.Pt, deg float64) {
	dc.Push()
	defer dc.Pop()
	if deg != 0 {
		dc.RotateAbout(geom.Radians(deg), c.X, c.Y)
	}
	b := img.Bounds()
	dc.DrawImage(img, int(math.Round(c.X-float64(b.Dx())/2)), int(math.Round(c.Y-float64(b.Dy())/2)))
}
