/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"

	"screenshotstudio/internal/geom"
)

const (
	minZoom = 0.05
	maxZoom = 4
)

// View maps between widget coordinates and canvas pixels.
type View struct {
	Zoom    float64
	OffsetX float64
	OffsetY float64
	CanvasW float64
	CanvasH float64
}

// FitView centers a canvas of cw x ch inside a widget of ww x wh with a margin on every side.
func FitView(cw, ch int, ww, wh, margin float64) View {
	v := View{Zoom: 1, CanvasW: float64(cw), CanvasH: float64(ch)}
	if cw <= 0 || ch <= 0 {
		return v
	}
	aw, ah := math.Max(ww-2*margin, 1), math.Max(wh-2*margin, 1)
	v.Zoom = geom.Clamp(math.Min(aw/v.CanvasW, ah/v.CanvasH), minZoom, maxZoom)
	v.OffsetX = (ww - v.CanvasW*v.Zoom) / 2
	v.OffsetY = (wh - v.CanvasH*v.Zoom) / 2
	return v
}

func (v View) ToCanvas(x, y float64) geom.Pt {
	z := v.Zoom
	if z == 0 {
		z = 1
	}
	return geom.Pt{X: (x - v.OffsetX) / z, Y: (y - v.OffsetY) / z}
}

func (v View) ToScreen(p geom.Pt) (float64, float64) {
	return v.OffsetX + p.X*v.Zoom, v.OffsetY + p.Y*v.Zoom
}

// ZoomAt scales by factor keeping the widget point (x, y) fixed.
func (v View) ZoomAt(x, y, factor float64) View {
	anchor := v.ToCanvas(x, y)
	v.Zoom = geom.Clamp(v.Zoom*factor, minZoom, maxZoom)
	v.OffsetX = x - anchor.X*v.Zoom
	v.OffsetY = y - anchor.Y*v.Zoom
	return v
}
