/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package palette

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const (
	thumbSize     = 64
	minSaturation = 0.35
	darkCutoff    = 40  // max channel below: treated as black
	lightCutoff   = 215 // min channel above: treated as white
)

type bucket struct {
	n       int
	r, g, b int
	sat     float64
}

// ExtractAccent picks a vivid swatch from img and returns it as #RRGGBB.
// Near-black, near-white and unsaturated pixels never qualify; when no pixel
// qualifies DefaultAccent is returned.
func ExtractAccent(img image.Image) string {
	if img == nil || img.Bounds().Empty() {
		return DefaultAccent
	}
	thumb := imaging.Fit(img, thumbSize, thumbSize, imaging.Box)
	buckets := map[uint16]*bucket{}
	b := thumb.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := thumb.NRGBAAt(x, y)
			if c.A < 128 {
				continue
			}
			s, ok := vivid(c)
			if !ok {
				continue
			}
			key := uint16(c.R>>4)<<8 | uint16(c.G>>4)<<4 | uint16(c.B>>4)
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.n++
			bk.r += int(c.R)
			bk.g += int(c.G)
			bk.b += int(c.B)
			bk.sat += s
		}
	}
	var best *bucket
	var bestKey uint16
	for key, bk := range buckets {
		// summed saturation favours large swatches that are also vivid
		if best == nil || beats(bk, key, best, bestKey) {
			best, bestKey = bk, key
		}
	}
	if best == nil {
		return DefaultAccent
	}
	return Hex(color.NRGBA{R: uint8(best.r / best.n), G: uint8(best.g / best.n), B: uint8(best.b / best.n), A: 255})
}

// beats orders buckets by summed saturation, then pixel count, then the
// lower key, so the winner never depends on map iteration order.
func beats(a *bucket, ak uint16, b *bucket, bk uint16) bool {
	if a.sat != b.sat {
		return a.sat > b.sat
	}
	if a.n != b.n {
		return a.n > b.n
	}
	return ak < bk
}

// vivid returns HSL saturation and whether c qualifies as an accent pixel.
func vivid(c color.NRGBA) (float64, bool) {
	mx := math.Max(float64(c.R), math.Max(float64(c.G), float64(c.B)))
	mn := math.Min(float64(c.R), math.Min(float64(c.G), float64(c.B)))
	if mx < darkCutoff || mn > lightCutoff {
		return 0, false
	}
	l := (mx + mn) / 510
	d := (mx - mn) / 255
	if d == 0 {
		return 0, false
	}
	s := d / (1 - math.Abs(2*l-1))
	return s, s >= minSaturation
}
