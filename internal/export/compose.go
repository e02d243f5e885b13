/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export is the authoritative headless path for final assets: it
// composes panels through the same render engine the editor uses and writes
// them as PNG files, a ZIP bundle and a PDF proof sheet.
package export

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"screenshotstudio/internal/assets"
	"screenshotstudio/internal/background"
	"screenshotstudio/internal/device"
	"screenshotstudio/internal/element"
	"screenshotstudio/internal/legacy"
	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/palette"
	"screenshotstudio/internal/render"
	"screenshotstudio/internal/template"
	"screenshotstudio/internal/textlayout"
)

// AccentToken is the color value replaced by the panel accent.
const AccentToken = "accent"

// Composer renders panels. It is safe for concurrent use: every call builds
// its own canvas and face cache, and only Library and Cache are shared.
type Composer struct {
	Library *textlayout.Library
	Cache   *assets.Cache
}

func NewComposer(lib *textlayout.Library, cache *assets.Cache) *Composer {
	if lib == nil {
		lib = textlayout.NewLibrary()
	}
	if cache == nil {
		cache = assets.NewCache(nil)
	}
	return &Composer{Library: lib, Cache: cache}
}

// Option tweaks one compose call.
type Option func(*options)

type options struct {
	panel background.Panel
	vars  map[string]string
}

// AtPanel places the panel at index of total, which slices horizontal gradients.
func AtPanel(index, total int) Option {
	return func(o *options) { o.panel = background.Panel{Index: index, Total: total} }
}

// WithVars feeds {{name}} placeholders of template text and QR layers.
// "index" and "count" are set from the panel unless vars names them.
func WithVars(vars map[string]string) Option {
	return func(o *options) { o.vars = vars }
}

// templateVars is vars with the panel's 1-based index and the panel count.
func (o options) templateVars() map[string]string {
	out := map[string]string{
		"index": strconv.Itoa(o.panel.Index + 1),
		"count": strconv.Itoa(max(o.panel.Total, 1)),
	}
	for k, v := range o.vars {
		out[k] = v
	}
	return out
}

func collect(opts []Option) options {
	o := options{panel: background.Panel{Index: 0, Total: 1}}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// ComposeLegacy renders a legacy document. An empty device falls back to the document's device.
func (c *Composer) ComposeLegacy(ctx context.Context, cfg legacy.Config, accent, dev string, opts ...Option) (image.Image, error) {
	if dev == "" {
		dev = cfg.Device
	}
	return c.ComposeElements(ctx, legacy.Decode(cfg, device.Resolve(dev)), legacy.DecodeGlobal(cfg), accent, dev, opts...)
}

// ComposeElements renders one panel. Element failures are logged and returned joined next to
// the finished image; the image is nil only when ctx is done.
func (c *Composer) ComposeElements(ctx context.Context, st element.ScreenshotState, global element.GlobalSettings, accent, dev string, opts ...Option) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := collect(opts)
	if dev == "" {
		dev = global.Device
	}
	l := applog.WithOperation(applog.WithComponent("export"), "compose").With(slog.String("panel", st.ID))
	ctx = applog.WithRender(ctx, device.Resolve(dev).ID, o.panel.Index, o.panel.Total)

	shot := c.load(ctx, l, st.ScreenshotRef)
	if accent == "" {
		accent = palette.ExtractAccent(shot)
	}
	accent = palette.NormalizeAccent(accent)
	st = st.Clone()
	applyAccent(&st, &global, accent)

	m := render.NewMetrics(dev, c.Library)
	defer m.Faces.Close()
	dc := gg.NewContext(m.Preset.CanvasWidth, m.Preset.CanvasHeight)

	var bgImg image.Image
	if global.Background.Mode == element.BackgroundImage {
		bgImg = c.load(ctx, l, global.Background.Image.URL)
	}
	background.Paint(dc, global.Background, o.panel, bgImg)

	frame := c.load(ctx, l, global.DeviceFrame)
	err := render.RenderAll(ctx, dc, st.Elements, shot, frame, m, c.Cache)
	return dc.Image(), err
}

// ComposeTemplate renders the heading, subheading and screenshot of cfg through tpl.
func (c *Composer) ComposeTemplate(ctx context.Context, tpl *template.Template, cfg legacy.Config, accent, dev string, overrides map[string]string, opts ...Option) (image.Image, error) {
	if tpl == nil {
		return nil, errors.New("template is nil")
	}
	o := collect(opts)
	if dev == "" {
		dev = cfg.Device
	}
	l := applog.WithOperation(applog.WithComponent("export"), "compose_template").With(slog.String("template", tpl.ID))
	in := template.Input{
		Device:     dev,
		Accent:     accent,
		Heading:    cfg.Heading.Text,
		Subheading: cfg.Subheading.Text,
		Screenshot: c.load(ctx, l, cfg.Screenshot),
		Frame:      c.load(ctx, l, cfg.DeviceFrame),
		Overrides:  overrides,
		Vars:       o.templateVars(),
		Panel:      o.panel,
		Library:    c.Library,
		Cache:      c.Cache,
	}
	return template.Render(ctx, tpl, in)
}

// load returns nil for an empty ref or a failed load.
func (c *Composer) load(ctx context.Context, l *slog.Logger, ref string) image.Image {
	if strings.TrimSpace(ref) == "" {
		return nil
	}
	img, err := c.Cache.Get(ctx, ref)
	if err != nil {
		l.WarnContext(ctx, "image unavailable", slog.String("ref", ref), slog.Any("err", err))
		return nil
	}
	return img
}

func applyAccent(st *element.ScreenshotState, g *element.GlobalSettings, accent string) {
	sub := func(s *string) {
		if strings.EqualFold(strings.TrimSpace(*s), AccentToken) {
			*s = accent
		}
	}
	for _, el := range st.Elements {
		if t, ok := el.(*element.Text); ok {
			sub(&t.Color)
		}
	}
	sub(&g.Background.Color)
	sub(&g.Background.Gradient.From)
	sub(&g.Background.Gradient.To)
}
