/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package hittest resolves canvas points to elements. All geometry comes
// from package render so what is hit is exactly what was painted.
package hittest

import (
	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
	"screenshotstudio/internal/render"
)

// LineMargin expands every text line band on all sides, in canvas pixels.
const LineMargin = 8

// IsPointInRotatedRect reports whether p is inside r rotated by deg around
// r's center.
func IsPointInRotatedRect(p geom.Pt, r geom.Rect, deg float64) bool {
	return geom.IsPointInRotatedRect(p, r, deg)
}

// Hit reports whether p lies on el. Text is tested per wrapped line, so the
// gaps beside short lines of a block do not count.
func Hit(p geom.Pt, el element.Element, m render.Metrics) bool {
	switch e := el.(type) {
	case *element.Text:
		l := render.LayoutText(render.TextSpecFor(e, m))
		for _, ln := range l.Lines {
			band := l.LineBand(ln).Inset(-LineMargin, -LineMargin)
			if geom.IsPointInRotatedRectAbout(p, band, e.Rotation, l.Spec.Anchor) {
				return true
			}
		}
		return false
	case *element.Mockup, *element.Visual:
		f := render.FrameOf(el, m)
		return IsPointInRotatedRect(p, f.Rect, f.Rotation)
	default:
		return false
	}
}

// ElementAt returns the id of the topmost element containing p.
func ElementAt(p geom.Pt, els []element.Element, m render.Metrics) (string, bool) {
	for _, el := range element.HitOrder(els) {
		if Hit(p, el, m) {
			return el.Base().ID, true
		}
	}
	return "", false
}

// AllElementsAt returns the ids of every element containing p, topmost first.
func AllElementsAt(p geom.Pt, els []element.Element, m render.Metrics) []string {
	var ids []string
	for _, el := range element.HitOrder(els) {
		if Hit(p, el, m) {
			ids = append(ids, el.Base().ID)
		}
	}
	return ids
}
