/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package background fills a panel canvas with a solid color, a linear
// gradient or an image. A horizontal gradient shared by N panels is sliced
// so the panels placed edge to edge show one continuous gradient.
package background

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"screenshotstudio/internal/assets"
	"screenshotstudio/internal/element"
	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/palette"
)

// Panel locates one canvas within a multi-panel set.
type Panel struct {
	Index int
	Total int
}

func (p Panel) normalized() Panel {
	if p.Total < 1 {
		p.Total = 1
	}
	if p.Index < 0 {
		p.Index = 0
	}
	if p.Index >= p.Total {
		p.Index = p.Total - 1
	}
	return p
}

var fallbackColor = palette.MustParse(element.DefaultBackgroundColor)

// Paint fills the whole canvas of dc. img is the pre-loaded background image
// for image mode; nil falls back to the solid color.
func Paint(dc *gg.Context, bg element.Background, panel Panel, img image.Image) {
	bg.Normalize()
	w, h := float64(dc.Width()), float64(dc.Height())
	base := palette.ParseOr(bg.Color, fallbackColor)

	dc.Push()
	defer dc.Pop()
	dc.Identity()
	dc.ResetClip()

	switch bg.Mode {
	case element.BackgroundGradient:
		start, end := Slice(bg.Gradient, panel)
		var grad gg.Gradient
		switch bg.Gradient.Direction {
		case element.ToBottom:
			grad = gg.NewLinearGradient(0, 0, 0, h)
		case element.ToTop:
			grad = gg.NewLinearGradient(0, h, 0, 0)
		default:
			// horizontal slices are always drawn left to right; direction
			// is already folded into the endpoint colors
			grad = gg.NewLinearGradient(0, 0, w, 0)
		}
		grad.AddColorStop(0, start)
		grad.AddColorStop(1, end)
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	case element.BackgroundImage:
		fill(dc, base)
		if img == nil {
			applog.WithComponent("background").Warn("background image missing, using solid fallback",
				slog.String("url", bg.Image.URL))
			return
		}
		drawImage(dc, img, bg.Image.Fit, bg.Image.Opacity)
	default:
		fill(dc, base)
	}
}

func fill(dc *gg.Context, c color.Color) {
	dc.SetColor(c)
	dc.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
	dc.Fill()
}

// Slice returns the colors at the left and right edge of panel for a
// horizontal gradient, or at the start and end of the axis for a vertical
// one (vertical gradients are not sliced).
func Slice(g element.Gradient, panel Panel) (start, end color.NRGBA) {
	from := palette.ParseOr(g.From, palette.MustParse(element.DefaultGradientFrom))
	to := palette.ParseOr(g.To, palette.MustParse(element.DefaultGradientTo))
	if !g.Direction.Horizontal() {
		return from, to
	}
	p := panel.normalized()
	x0 := float64(p.Index) / float64(p.Total)
	x1 := float64(p.Index+1) / float64(p.Total)
	if g.Direction == element.ToLeft {
		x0, x1 = 1-x0, 1-x1
	}
	return palette.Interpolate(from, to, x0), palette.Interpolate(from, to, x1)
}

func drawImage(dc *gg.Context, img image.Image, fit element.Fit, opacity float64) {
	w, h := dc.Width(), dc.Height()
	switch fit {
	case element.FitContain:
		fitted := imaging.Fit(img, w, h, imaging.Lanczos)
		b := fitted.Bounds()
		dc.DrawImage(assets.Fade(fitted, opacity), (w-b.Dx())/2, (h-b.Dy())/2)
	case element.FitFill:
		dc.DrawImage(assets.Fade(assets.Resample(img, w, h), opacity), 0, 0)
	case element.FitTile:
		tile := assets.Fade(img, opacity)
		b := tile.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			return
		}
		for y := 0; y < h; y += b.Dy() {
			for x := 0; x < w; x += b.Dx() {
				dc.DrawImage(tile, x, y)
			}
		}
	default:
		dc.DrawImage(assets.Fade(imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos), opacity), 0, 0)
	}
}
