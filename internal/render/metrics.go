/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render paints elements onto a canvas. The geometry helpers in
// this package (text layout, mockup and visual rects, bounds) are the only
// place those formulas live; hit detection and the transform controller
// call them instead of recomputing.
package render

import (
	"screenshotstudio/internal/device"
	"screenshotstudio/internal/geom"
	"screenshotstudio/internal/textlayout"
)

// Metrics is the per-session measuring context: the device preset and the
// face cache used for every text measurement.
type Metrics struct {
	Preset device.Preset
	Faces  *textlayout.Faces
}

// NewMetrics builds metrics for a device string over lib.
func NewMetrics(deviceID string, lib *textlayout.Library) Metrics {
	return Metrics{Preset: device.Resolve(deviceID), Faces: textlayout.NewFaces(lib)}
}

func (m Metrics) faces() *textlayout.Faces {
	if m.Faces == nil {
		return textlayout.NewFaces(nil)
	}
	return m.Faces
}

// Canvas is the full canvas rect.
func (m Metrics) Canvas() geom.Rect {
	return geom.R(0, 0, float64(m.Preset.CanvasWidth), float64(m.Preset.CanvasHeight))
}
