/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package legacy converts the flat per-image configuration that predates
// the element model. Both directions are total: missing or malformed
// values are replaced by fixed defaults and nothing is ever rejected.
package legacy

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"screenshotstudio/internal/device"
	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
	applog "screenshotstudio/internal/log"
)

// Fixed element ids produced by Decode.
const (
	HeadingID    = "heading"
	SubheadingID = "subheading"
	MockupID     = "mockup"
)

// Defaults for fields a legacy document leaves out. The text Y values are
// at the reference width and scale with the device font scale.
const (
	DefaultHeadingSize    = 96
	DefaultHeadingWeight  = 700
	DefaultSubheadingSize = 56
	DefaultHeadingY       = 220
	DefaultSubheadingY    = 360
)

// Text is one legacy text block.
type Text struct {
	Text          string   `json:"text"`
	FontFamily    string   `json:"fontFamily,omitempty"`
	FontSize      float64  `json:"fontSize,omitempty"`
	FontWeight    int      `json:"fontWeight,omitempty"`
	Color         string   `json:"color,omitempty"`
	Align         string   `json:"align,omitempty"`
	LetterSpacing float64  `json:"letterSpacing,omitempty"`
	LineHeight    float64  `json:"lineHeight,omitempty"`
	Width         float64  `json:"width,omitempty"`
	Rotation      float64  `json:"rotation,omitempty"`
	X             *float64 `json:"x,omitempty"`
	Y             *float64 `json:"y,omitempty"`
}

// UnmarshalJSON keeps an unusable x or y unset so the default position
// applies to that axis only.
func (t *Text) UnmarshalJSON(data []byte) error {
	type plain Text
	var aux struct {
		plain
		X json.RawMessage `json:"x,omitempty"`
		Y json.RawMessage `json:"y,omitempty"`
	}
	err := json.Unmarshal(data, &aux)
	*t = Text(aux.plain)
	t.X, t.Y = optFloat(aux.X), optFloat(aux.Y)
	return err
}

func optFloat(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var f float64
	if json.Unmarshal(raw, &f) != nil {
		return nil
	}
	return &f
}

type Mockup struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Hidden   bool    `json:"hidden,omitempty"`
}

type Background struct {
	Type              string  `json:"type,omitempty"`
	Color             string  `json:"color,omitempty"`
	GradientStart     string  `json:"gradientStart,omitempty"`
	GradientEnd       string  `json:"gradientEnd,omitempty"`
	GradientDirection string  `json:"gradientDirection,omitempty"`
	Image             string  `json:"image,omitempty"`
	ImageFit          string  `json:"imageFit,omitempty"`
	ImageOpacity      float64 `json:"imageOpacity,omitempty"`
}

type Visual struct {
	ID       string   `json:"id,omitempty"`
	URL      string   `json:"url"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	Scale    float64  `json:"scale,omitempty"`
	Rotation float64  `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	ZIndex   int      `json:"zIndex,omitempty"`
}

// Config is the legacy per-image document.
type Config struct {
	ID          string     `json:"id,omitempty"`
	Screenshot  string     `json:"screenshot,omitempty"`
	Device      string     `json:"device,omitempty"`
	DeviceFrame string     `json:"deviceFrame,omitempty"`
	Theme       string     `json:"theme,omitempty"`
	Heading     Text       `json:"heading"`
	Subheading  Text       `json:"subheading"`
	Mockup      Mockup     `json:"mockup"`
	Background  Background `json:"background"`
	Visuals     []Visual   `json:"visuals,omitempty"`
}

// Parse reads a legacy document. Each top-level block is decoded on its
// own; a block with a wrong-typed value keeps what did decode and warns.
// JSON that is not an object yields an all-default Config.
func Parse(data []byte) Config {
	l := applog.WithComponent("legacy")
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		l.Warn("malformed legacy config, using defaults", slog.Any("err", err))
		return Config{}
	}
	var cfg Config
	fields := []struct {
		key string
		dst any
	}{
		{"id", &cfg.ID},
		{"screenshot", &cfg.Screenshot},
		{"device", &cfg.Device},
		{"deviceFrame", &cfg.DeviceFrame},
		{"theme", &cfg.Theme},
		{"heading", &cfg.Heading},
		{"subheading", &cfg.Subheading},
		{"mockup", &cfg.Mockup},
		{"background", &cfg.Background},
		{"visuals", &cfg.Visuals},
	}
	for _, f := range fields {
		msg, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, f.dst); err != nil {
			l.Warn("malformed legacy field, defaulting", slog.String("field", f.key), slog.Any("err", err))
		}
	}
	return cfg
}

// Decode converts cfg into a screenshot state laid out for p. The mockup
// sits at the bottom, visuals above it and the two text blocks on top.
func Decode(cfg Config, p device.Preset) element.ScreenshotState {
	st := element.ScreenshotState{ID: cfg.ID, ScreenshotRef: cfg.Screenshot, ThemeRef: cfg.Theme}
	if !cfg.Mockup.Hidden {
		mk := &element.Mockup{ScreenshotRef: cfg.Screenshot, Scale: cfg.Mockup.Scale}
		if mk.Scale == 0 {
			mk.Scale = 1
		}
		mk.ID, mk.ZIndex = MockupID, 0
		mk.Position = element.Position{X: cfg.Mockup.X, Y: cfg.Mockup.Y}
		mk.Rotation = cfg.Mockup.Rotation
		st.Elements = append(st.Elements, mk)
	}
	used := map[string]bool{HeadingID: true, SubheadingID: true, MockupID: true}
	n, maxZ := 0, 0
	for i, lv := range cfg.Visuals {
		if strings.TrimSpace(lv.URL) == "" {
			continue
		}
		n++
		v := &element.Visual{ImageURL: lv.URL, Width: lv.Width, Height: lv.Height, Scale: lv.Scale, Opacity: 1}
		if v.Scale == 0 {
			v.Scale = 1
		}
		if lv.Opacity != nil {
			v.Opacity = *lv.Opacity
		}
		v.ID = uniqueID(used, strings.TrimSpace(lv.ID), i)
		v.ZIndex = lv.ZIndex
		if v.ZIndex == 0 {
			v.ZIndex = n
		}
		maxZ = max(maxZ, v.ZIndex)
		v.Position = element.Position{X: lv.X, Y: lv.Y}
		v.Rotation = lv.Rotation
		st.Elements = append(st.Elements, v)
	}
	top := max(n, maxZ) + 1
	scale := p.FontScale
	if !(scale > 0) {
		scale = 1
	}
	cx := float64(p.CanvasWidth) / 2
	if cx <= 0 {
		cx = device.ReferenceWidth / 2
	}
	st.Elements = append(st.Elements,
		decodeText(HeadingID, top, cfg.Heading, DefaultHeadingSize, DefaultHeadingWeight, geom.Pt{X: cx, Y: DefaultHeadingY * scale}),
		decodeText(SubheadingID, top+1, cfg.Subheading, DefaultSubheadingSize, element.DefaultFontWeight, geom.Pt{X: cx, Y: DefaultSubheadingY * scale}),
	)
	for _, el := range st.Elements {
		el.Normalize()
	}
	return st
}

func visualID(i int) string { return "visual-" + strconv.Itoa(i) }

// decodeText places the block at def unless it stores its own x or y.
func decodeText(id string, z int, lt Text, size float64, weight int, def geom.Pt) *element.Text {
	t := &element.Text{
		Text:          lt.Text,
		FontFamily:    strings.TrimSpace(lt.FontFamily),
		FontSize:      lt.FontSize,
		FontWeight:    lt.FontWeight,
		Color:         strings.TrimSpace(lt.Color),
		Align:         element.Align(strings.ToLower(strings.TrimSpace(lt.Align))),
		LetterSpacing: lt.LetterSpacing,
		LineHeight:    lt.LineHeight,
		Width:         lt.Width,
	}
	if !(t.FontSize > 0) {
		t.FontSize = size
	}
	if t.FontWeight <= 0 {
		t.FontWeight = weight
	}
	t.IsBold = t.FontWeight >= 600
	t.ID, t.ZIndex = id, z
	t.Position = element.Position{X: def.X, Y: def.Y}
	if lt.X != nil {
		t.Position.X = *lt.X
	}
	if lt.Y != nil {
		t.Position.Y = *lt.Y
	}
	t.Rotation = lt.Rotation
	return t
}

// uniqueID keeps want unless it is empty or taken; the replacement is
// derived from the visual's index.
func uniqueID(used map[string]bool, want string, i int) string {
	id := want
	if id == "" || used[id] {
		id = visualID(i)
		for used[id] {
			id += "-dup"
		}
	}
	used[id] = true
	return id
}

// DecodeGlobal extracts the project-wide settings carried by cfg.
func DecodeGlobal(cfg Config) element.GlobalSettings {
	lb := cfg.Background
	bg := element.Background{
		Mode:  element.BackgroundMode(strings.ToLower(strings.TrimSpace(lb.Type))),
		Color: strings.TrimSpace(lb.Color),
		Gradient: element.Gradient{
			From:      strings.TrimSpace(lb.GradientStart),
			To:        strings.TrimSpace(lb.GradientEnd),
			Direction: parseDirection(lb.GradientDirection),
		},
		Image: element.BackgroundImageSpec{
			URL:     strings.TrimSpace(lb.Image),
			Fit:     element.Fit(strings.ToLower(strings.TrimSpace(lb.ImageFit))),
			Opacity: lb.ImageOpacity,
		},
	}
	if bg.Mode == element.BackgroundImage && bg.Image.URL == "" {
		bg.Mode = element.BackgroundSolid
	}
	bg.Normalize()
	return element.GlobalSettings{Background: bg, DeviceFrame: cfg.DeviceFrame, Device: cfg.Device}
}

// parseDirection accepts the spellings older documents used.
func parseDirection(s string) element.Direction {
	k := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch strings.Join(strings.Fields(k), " ") {
	case "to right", "right", "left to right", "horizontal", "90deg":
		return element.ToRight
	case "to left", "left", "right to left", "270deg":
		return element.ToLeft
	case "to top", "top", "bottom to top", "0deg":
		return element.ToTop
	case "to bottom", "bottom", "top to bottom", "vertical", "180deg":
		return element.ToBottom
	default:
		return ""
	}
}

// Encode flattens a state back into the legacy document. Texts with the
// fixed heading and subheading ids take those slots; otherwise the first
// two texts in paint order do. A state has at most one legacy mockup; extra
// texts and mockups are dropped.
func Encode(st element.ScreenshotState, global element.GlobalSettings) Config {
	cfg := Config{
		ID:          st.ID,
		Screenshot:  st.ScreenshotRef,
		Device:      global.Device,
		DeviceFrame: global.DeviceFrame,
		Theme:       st.ThemeRef,
		Mockup:      Mockup{Hidden: true},
	}
	var heading, sub *element.Text
	var extraTexts []*element.Text
	haveMockup := false
	for _, el := range element.PaintOrder(st.Elements) {
		switch e := el.(type) {
		case *element.Text:
			switch {
			case e.ID == HeadingID && heading == nil:
				heading = e
			case e.ID == SubheadingID && sub == nil:
				sub = e
			default:
				extraTexts = append(extraTexts, e)
			}
		case *element.Mockup:
			if haveMockup {
				continue
			}
			haveMockup = true
			cfg.Mockup = Mockup{X: e.Position.X, Y: e.Position.Y, Scale: e.Scale, Rotation: e.Rotation}
			if cfg.Screenshot == "" {
				cfg.Screenshot = e.ScreenshotRef
			}
		case *element.Visual:
			op := e.Opacity
			cfg.Visuals = append(cfg.Visuals, Visual{
				ID: e.ID, URL: e.ImageURL, X: e.Position.X, Y: e.Position.Y,
				Width: e.Width, Height: e.Height, Scale: e.Scale, Rotation: e.Rotation,
				Opacity: &op, ZIndex: e.ZIndex,
			})
		}
	}
	for _, t := range extraTexts {
		switch {
		case heading == nil:
			heading = t
		case sub == nil:
			sub = t
		}
	}
	if heading != nil {
		cfg.Heading = encodeText(heading)
	}
	if sub != nil {
		cfg.Subheading = encodeText(sub)
	}
	cfg.Background = encodeBackground(global.Background)
	return cfg
}

func encodeText(t *element.Text) Text {
	x, y := t.Position.X, t.Position.Y
	return Text{
		Text:          t.Text,
		FontFamily:    t.FontFamily,
		FontSize:      t.FontSize,
		FontWeight:    t.FontWeight,
		Color:         t.Color,
		Align:         string(t.Align),
		LetterSpacing: t.LetterSpacing,
		LineHeight:    t.LineHeight,
		Width:         t.Width,
		Rotation:      t.Rotation,
		X:             &x,
		Y:             &y,
	}
}

func encodeBackground(bg element.Background) Background {
	bg.Normalize()
	return Background{
		Type:              string(bg.Mode),
		Color:             bg.Color,
		GradientStart:     bg.Gradient.From,
		GradientEnd:       bg.Gradient.To,
		GradientDirection: string(bg.Gradient.Direction),
		Image:             bg.Image.URL,
		ImageFit:          string(bg.Image.Fit),
		ImageOpacity:      bg.Image.Opacity,
	}
}
