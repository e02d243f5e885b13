/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"

	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
)

// Frame is an element's unrotated bounding box together with the pivot and
// angle it is rotated by on screen.
type Frame struct {
	Rect     geom.Rect
	Pivot    geom.Pt
	Rotation float64
}

// ToLocal maps a canvas point into the frame's unrotated space.
func (f Frame) ToLocal(p geom.Pt) geom.Pt { return geom.RotatePoint(p, f.Pivot, -f.Rotation) }

// ToCanvas maps a local point onto the canvas.
func (f Frame) ToCanvas(p geom.Pt) geom.Pt { return geom.RotatePoint(p, f.Pivot, f.Rotation) }

// Contains tests p against the rotated rect.
func (f Frame) Contains(p geom.Pt) bool { return f.Rect.Contains(f.ToLocal(p)) }

// FrameOf returns the bounding frame of el. Text frames pivot at the text
// anchor; mockups and visuals pivot at their center.
func FrameOf(el element.Element, m Metrics) Frame {
	switch e := el.(type) {
	case *element.Text:
		l := LayoutText(TextSpecFor(e, m))
		return Frame{Rect: l.Bounds(), Pivot: l.Spec.Anchor, Rotation: e.Rotation}
	case *element.Mockup:
		g := MockupRect(e, m)
		return Frame{Rect: g.Rect, Pivot: g.Rect.Center(), Rotation: g.Rotation}
	case *element.Visual:
		r := VisualRect(e)
		return Frame{Rect: r, Pivot: r.Center(), Rotation: e.Rotation}
	default:
		panic(fmt.Sprintf("render: unhandled element type %T", el))
	}
}
