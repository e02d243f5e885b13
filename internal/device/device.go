/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package device is the registry of target devices. A preset fixes the
// canvas pixel size and the mockup geometry every renderer derives from.
// Presets are built once from ratio templates and handed out by value.
package device

import (
	"math"
	"strings"
)

// ReferenceWidth is the canvas width at which FontScale is 1.
const ReferenceWidth = 1290

// DefaultID is the preset used for unrecognized device strings.
const DefaultID = "iphone-6.7"

// IPadID is the preset for any unrecognized string mentioning an iPad.
const IPadID = "ipad-12.9"

// Mockup is the device-frame geometry at scale 1, in canvas pixels.
type Mockup struct {
	BaseWidth    float64
	BaseHeight   float64
	DefaultScale float64
	// OffsetX/OffsetY shift the mockup center away from the canvas center.
	OffsetX      float64
	OffsetY      float64
	InnerPadding float64
	CornerRadius float64
}

// Preset is the canonical geometry of one target device.
type Preset struct {
	ID               string
	Name             string
	CanvasWidth      int
	CanvasHeight     int
	FontScale        float64
	DefaultTextWidth float64
	Mockup           Mockup
	Aliases          []string
}

// Tablet reports whether the preset is an iPad class device.
func (p Preset) Tablet() bool { return strings.HasPrefix(p.ID, "ipad") }

// ratios describe a device family relative to its canvas width.
type ratios struct {
	textWidth    float64
	mockupWidth  float64
	screenAspect float64 // mockup height / width
	offsetY      float64 // share of canvas height
	innerPadding float64 // share of mockup width
	cornerRadius float64 // share of mockup width
}

var (
	phone  = ratios{textWidth: 0.84, mockupWidth: 0.74, screenAspect: 2.1667, offsetY: 0.12, innerPadding: 0.035, cornerRadius: 0.13}
	tablet = ratios{textWidth: 0.80, mockupWidth: 0.78, screenAspect: 1.3333, offsetY: 0.10, innerPadding: 0.03, cornerRadius: 0.05}
)

type seed struct {
	id, name string
	w, h     int
	r        ratios
	aliases  []string
}

var seeds = []seed{
	{"iphone-6.9", "iPhone 6.9\"", 1320, 2868, phone, []string{"iphone 6.9", "6.9", "iphone 16 pro max", "iphone 16 plus"}},
	{"iphone-6.7", "iPhone 6.7\"", 1290, 2796, phone, []string{"iphone", "iphone 6.7", "6.7", "iphone 15 pro max", "iphone 14 pro max", "iphone pro max"}},
	{"iphone-6.5", "iPhone 6.5\"", 1242, 2688, phone, []string{"iphone 6.5", "6.5", "iphone 11 pro max", "iphone xs max"}},
	{"iphone-5.5", "iPhone 5.5\"", 1242, 2208, phone, []string{"iphone 5.5", "5.5", "iphone 8 plus", "iphone plus"}},
	{IPadID, "iPad 12.9\"", 2048, 2732, tablet, []string{"ipad", "ipad 12.9", "12.9", "ipad pro", "ipad pro 12.9"}},
}

var (
	presets []Preset
	byID    = map[string]int{}
	aliases = map[string]int{}
)

func init() {
	for i, s := range seeds {
		presets = append(presets, build(s))
		byID[s.id] = i
		aliases[normalize(s.id)] = i
		for _, a := range s.aliases {
			aliases[normalize(a)] = i
		}
	}
}

func build(s seed) Preset {
	w := float64(s.w)
	mw := math.Round(w * s.r.mockupWidth)
	return Preset{
		ID:               s.id,
		Name:             s.name,
		CanvasWidth:      s.w,
		CanvasHeight:     s.h,
		FontScale:        w / ReferenceWidth,
		DefaultTextWidth: math.Round(w * s.r.textWidth),
		Mockup: Mockup{
			BaseWidth:    mw,
			BaseHeight:   math.Round(mw * s.r.screenAspect),
			DefaultScale: 1,
			OffsetY:      math.Round(float64(s.h) * s.r.offsetY),
			InnerPadding: math.Round(mw * s.r.innerPadding),
			CornerRadius: math.Round(mw * s.r.cornerRadius),
		},
		Aliases: append([]string(nil), s.aliases...),
	}
}

// normalize lower-cases, trims and folds '-', '_' and runs of whitespace to one space.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Resolve maps any device string to a preset. It never fails: unknown
// strings containing "ipad" resolve to the iPad preset, everything else to
// the default iPhone preset.
func Resolve(s string) Preset {
	n := normalize(s)
	if i, ok := aliases[n]; ok {
		return clone(presets[i])
	}
	if strings.Contains(strings.ReplaceAll(n, " ", ""), "ipad") {
		return clone(presets[byID[IPadID]])
	}
	return Default()
}

// Lookup finds a preset by its exact id.
func Lookup(id string) (Preset, bool) {
	i, ok := byID[id]
	if !ok {
		return Preset{}, false
	}
	return clone(presets[i]), true
}

// Default returns the default iPhone preset.
func Default() Preset { return clone(presets[byID[DefaultID]]) }

// All returns every preset in registry order.
func All() []Preset {
	out := make([]Preset, len(presets))
	for i, p := range presets {
		out[i] = clone(p)
	}
	return out
}

// clone copies the alias slice so callers cannot mutate the registry.
func clone(p Preset) Preset {
	p.Aliases = append([]string(nil), p.Aliases...)
	return p
}
