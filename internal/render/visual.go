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
	"math"

	"github.com/fogleman/gg"

	"screenshotstudio/internal/assets"
	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
)

// DefaultVisualSize is used when a visual has no intrinsic size recorded.
const DefaultVisualSize = 240

// VisualRect is the unrotated rect of a visual, centered on its position.
func VisualRect(v *element.Visual) geom.Rect {
	w, h := v.Width, v.Height
	if !(w > 0) || !(h > 0) {
		w, h = DefaultVisualSize, DefaultVisualSize
	}
	s := element.ClampScale(v.Scale)
	return geom.RectCentered(v.Position.Pt(), w*s, h*s)
}

// PaintVisual draws img into v's rect with v's rotation and opacity.
func PaintVisual(dc *gg.Context, v *element.Visual, img image.Image) {
	r := VisualRect(v)
	w, h := int(math.Round(r.W)), int(math.Round(r.H))
	if w < 1 || h < 1 {
		return
	}
	drawCentered(dc, assets.Fade(assets.Resample(img, w, h), geom.Clamp(v.Opacity, 0, 1)), r.Center(), v.Rotation)
}
