/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

type BackgroundMode string

const (
	BackgroundSolid    BackgroundMode = "solid"
	BackgroundGradient BackgroundMode = "gradient"
	BackgroundImage    BackgroundMode = "image"
)

// Direction is one of the four axis-aligned gradient directions.
type Direction string

const (
	ToRight  Direction = "to-right" // left to right
	ToLeft   Direction = "to-left"
	ToBottom Direction = "to-bottom"
	ToTop    Direction = "to-top"
)

// Horizontal reports whether the gradient runs across panels.
func (d Direction) Horizontal() bool { return d == ToRight || d == ToLeft }

type Fit string

const (
	FitCover   Fit = "cover"
	FitContain Fit = "contain"
	FitFill    Fit = "fill"
	FitTile    Fit = "tile"
)

type Gradient struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Direction Direction `json:"direction"`
}

type BackgroundImageSpec struct {
	URL     string  `json:"url"`
	Fit     Fit     `json:"fit"`
	Opacity float64 `json:"opacity"`
}

// Background describes the canvas fill shared by every panel of a project.
type Background struct {
	Mode     BackgroundMode      `json:"mode"`
	Color    string              `json:"color"`
	Gradient Gradient            `json:"gradient"`
	Image    BackgroundImageSpec `json:"image"`
}

// GlobalSettings is shared read-only across all panels of one project.
type GlobalSettings struct {
	Background  Background `json:"background"`
	DeviceFrame string     `json:"deviceFrame"`
	Device      string     `json:"device,omitempty"`
}

// Default background values.
const (
	DefaultBackgroundColor = "#111827"
	DefaultGradientFrom    = "#5B6CFF"
	DefaultGradientTo      = "#A855F7"
)

// Normalize fills missing or unknown background values.
func (b *Background) Normalize() {
	switch b.Mode {
	case BackgroundSolid, BackgroundGradient, BackgroundImage:
	default:
		b.Mode = BackgroundSolid
	}
	if b.Color == "" {
		b.Color = DefaultBackgroundColor
	}
	if b.Gradient.From == "" {
		b.Gradient.From = DefaultGradientFrom
	}
	if b.Gradient.To == "" {
		b.Gradient.To = DefaultGradientTo
	}
	switch b.Gradient.Direction {
	case ToRight, ToLeft, ToBottom, ToTop:
	default:
		b.Gradient.Direction = ToRight
	}
	switch b.Image.Fit {
	case FitCover, FitContain, FitFill, FitTile:
	default:
		b.Image.Fit = FitCover
	}
	if b.Image.Opacity <= 0 || b.Image.Opacity > 1 {
		b.Image.Opacity = 1
	}
}

// Project groups the panels of one screenshot set with their shared settings.
type Project struct {
	Settings GlobalSettings    `json:"settings"`
	Screens  []ScreenshotState `json:"screens"`
}
