/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package template

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"

	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"

	"screenshotstudio/internal/assets"
	"screenshotstudio/internal/background"
	"screenshotstudio/internal/device"
	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/palette"
	"screenshotstudio/internal/render"
	"screenshotstudio/internal/textlayout"
)

// Layer defaults, in reference canvas pixels unless noted.
const (
	DefaultHeadingSize    = 96
	DefaultHeadingWeight  = 700
	DefaultSubheadingSize = 56
	DefaultBadgeSize      = 40
	// DefaultQRSize is a share of the canvas width.
	DefaultQRSize = 0.18
)

// Input carries everything one headless render needs besides the template.
type Input struct {
	Device     string
	Accent     string // empty extracts it from Screenshot, else the default accent
	Heading    string
	Subheading string
	Screenshot image.Image
	Frame      image.Image
	// Overrides feed {{name}} color placeholders.
	Overrides map[string]string
	// Vars feed {{name}} placeholders in text and QR content. "heading"
	// and "subheading" are always set from the fields above.
	Vars    map[string]string
	Panel   background.Panel
	Library *textlayout.Library
	// Cache loads the background image, if any.
	Cache *assets.Cache
}

// Metrics derives render metrics for a template canvas. A canvas that
// differs from the preset size rescales every preset length with it.
func Metrics(dc DeviceCanvas, preset device.Preset, lib *textlayout.Library) render.Metrics {
	p := preset
	if dc.Width > 0 && dc.Height > 0 && (dc.Width != p.CanvasWidth || dc.Height != p.CanvasHeight) {
		k := float64(dc.Width) / float64(p.CanvasWidth)
		p.CanvasWidth, p.CanvasHeight = dc.Width, dc.Height
		p.FontScale = float64(dc.Width) / device.ReferenceWidth
		p.DefaultTextWidth = math.Round(p.DefaultTextWidth * k)
		mk := &p.Mockup
		mk.BaseWidth, mk.BaseHeight = math.Round(mk.BaseWidth*k), math.Round(mk.BaseHeight*k)
		mk.OffsetX, mk.OffsetY = mk.OffsetX*k, float64(dc.Height)*mk.OffsetY/float64(preset.CanvasHeight)
		mk.InnerPadding, mk.CornerRadius = math.Round(mk.InnerPadding*k), math.Round(mk.CornerRadius*k)
	}
	return render.Metrics{Preset: p, Faces: textlayout.NewFaces(lib)}
}

// session is the state of one Render call.
type session struct {
	tpl    *Template
	in     Input
	m      render.Metrics
	colors Colors
	vars   map[string]string
	w, h   float64
	log    *slog.Logger
}

// Render draws tpl for in.Device. Missing device canvases and invalid
// templates are errors; a layer that fails is logged and left out.
func Render(ctx context.Context, tpl *Template, in Input) (image.Image, error) {
	if tpl == nil {
		return nil, &ValidationError{Problems: []string{"nil template"}}
	}
	canvas, key, err := tpl.DeviceCanvas(in.Device)
	if err != nil {
		return nil, err
	}
	preset := device.Resolve(in.Device)
	m := Metrics(canvas, preset, in.Library)
	defer m.Faces.Close()

	accent := in.Accent
	if strings.TrimSpace(accent) == "" && in.Screenshot != nil {
		accent = palette.ExtractAccent(in.Screenshot)
	}
	vars := map[string]string{}
	for k, v := range in.Vars {
		vars[k] = v
	}
	vars["heading"], vars["subheading"] = in.Heading, in.Subheading

	ctx = applog.WithRender(ctx, preset.ID, in.Panel.Index, in.Panel.Total)
	s := &session{
		tpl: tpl, in: in, m: m, vars: vars,
		colors: NewColors(accent, in.Overrides),
		w:      float64(m.Preset.CanvasWidth), h: float64(m.Preset.CanvasHeight),
		log: applog.WithComponent("template").With(slog.String("template", tpl.ID), slog.String("canvas", key)),
	}
	dc := gg.NewContext(m.Preset.CanvasWidth, m.Preset.CanvasHeight)
	s.background(ctx, dc, canvas.Background)
	for i, l := range tpl.Layers {
		if err := s.layer(ctx, dc, l); err != nil {
			s.log.WarnContext(ctx, "layer skipped", slog.Int("layer", i), slog.String("type", string(l.Type)), slog.Any("err", err))
		}
	}
	return dc.Image(), nil
}

func (s *session) color(ctx context.Context, v, def string) color.NRGBA {
	if strings.TrimSpace(v) == "" {
		v = def
	}
	c, err := s.colors.Resolve(v)
	if err != nil {
		s.log.WarnContext(ctx, "color fell back to accent", slog.Any("err", err))
	}
	return c
}

func (s *session) background(ctx context.Context, dc *gg.Context, b BackgroundSpec) {
	bg := element.Background{
		Mode:  element.BackgroundMode(b.Type),
		Color: palette.HexAlpha(s.color(ctx, b.Color, "accentDarken(70)")),
		Gradient: element.Gradient{
			From:      palette.HexAlpha(s.color(ctx, b.From, "accent")),
			To:        palette.HexAlpha(s.color(ctx, b.To, "accentDarken(50)")),
			Direction: element.Direction(b.Direction),
		},
		Image: element.BackgroundImageSpec{URL: b.Image, Fit: element.Fit(b.Fit), Opacity: b.Opacity},
	}
	bg.Normalize()
	var img image.Image
	if bg.Mode == element.BackgroundImage && bg.Image.URL != "" && s.in.Cache != nil {
		var err error
		if img, err = s.in.Cache.Get(ctx, bg.Image.URL); err != nil {
			s.log.WarnContext(ctx, "background image unavailable", slog.Any("err", err))
		}
	}
	background.Paint(dc, bg, s.in.Panel, img)
}

func (s *session) layer(ctx context.Context, dc *gg.Context, l Layer) (err error) {
	dc.Push()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		dc.Pop()
	}()
	switch l.Type {
	case LayerHeading:
		s.text(ctx, dc, l, s.in.Heading, DefaultHeadingSize, DefaultHeadingWeight)
	case LayerSubheading:
		s.text(ctx, dc, l, s.in.Subheading, DefaultSubheadingSize, element.DefaultFontWeight)
	case LayerMockup:
		render.PaintMockup(dc, s.mockupGeometry(l), s.in.Screenshot, s.in.Frame)
	case LayerAccentShape:
		return s.shape(ctx, dc, l)
	case LayerBadge:
		s.badge(ctx, dc, l)
	case LayerQRCode:
		return s.qr(ctx, dc, l)
	default:
		return fmt.Errorf("unknown layer type %q", l.Type)
	}
	return nil
}

func opacity(l Layer) float64 {
	if l.Opacity == nil {
		return 1
	}
	return geom.Clamp(*l.Opacity, 0, 1)
}

func fade(c color.NRGBA, op float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * op))
	return c
}

// textElement lowers a text layer to the element the editor would hold
// for it, so both paths share TextSpecFor.
func (s *session) textElement(l Layer, fallback string, size float64, weight int) *element.Text {
	txt := Expand(l.Text, s.vars)
	if strings.TrimSpace(l.Text) == "" {
		txt = fallback
	}
	t := &element.Text{
		Text:          textlayout.ApplyCase(txt, textCase(l.Transform)),
		FontFamily:    l.FontFamily,
		FontSize:      l.FontSize,
		FontWeight:    l.FontWeight,
		Align:         element.Align(l.Align),
		LetterSpacing: l.LetterSpacing,
		LineHeight:    l.LineHeight,
	}
	if !(t.FontSize > 0) {
		t.FontSize = size
	}
	if t.FontWeight <= 0 {
		t.FontWeight = weight
	}
	if l.MaxWidthRatio > 0 {
		t.Width = l.MaxWidthRatio * s.w
	}
	t.Position = element.Position{X: resolveOr(l.X, s.w, s.w/2), Y: resolveOr(l.Y, s.h, s.h*0.1)}
	t.Rotation = l.Rotation
	t.Normalize()
	return t
}

func textCase(v string) textlayout.Case {
	switch c := textlayout.Case(strings.ToLower(strings.TrimSpace(v))); c {
	case textlayout.CaseUpper, textlayout.CaseLower, textlayout.CaseCapitalize:
		return c
	default:
		return textlayout.CaseNone
	}
}

func (s *session) text(ctx context.Context, dc *gg.Context, l Layer, fallback string, size float64, weight int) {
	t := s.textElement(l, fallback, size, weight)
	if strings.TrimSpace(t.Text) == "" {
		return
	}
	spec := render.TextSpecFor(t, s.m)
	spec.Color = fade(s.color(ctx, l.Color, "#FFFFFF"), opacity(l))
	spec.VAlign = render.VAlign(strings.ToLower(l.VerticalAlign))
	render.PaintText(dc, render.LayoutText(spec))
}

// mockupGeometry scales the preset mockup uniformly to fit the layer's
// max ratios; the layer scale is an upper bound.
func (s *session) mockupGeometry(l Layer) render.MockupGeometry {
	pm := s.m.Preset.Mockup
	k := l.Scale
	if !(k > 0) {
		k = 1
	}
	if l.MaxWidthRatio > 0 && pm.BaseWidth > 0 {
		k = math.Min(k, l.MaxWidthRatio*s.w/pm.BaseWidth)
	}
	if l.MaxHeightRatio > 0 && pm.BaseHeight > 0 {
		k = math.Min(k, l.MaxHeightRatio*s.h/pm.BaseHeight)
	}
	c := geom.Pt{
		X: resolveOr(l.X, s.w, s.w/2+pm.OffsetX),
		Y: resolveOr(l.Y, s.h, s.h/2+pm.OffsetY),
	}
	return render.MockupGeometry{
		Rect:         geom.RectCentered(c, pm.BaseWidth*k, pm.BaseHeight*k),
		CornerRadius: pm.CornerRadius * k,
		InnerPadding: pm.InnerPadding * k,
		Rotation:     geom.NormalizeDeg(l.Rotation),
	}
}

func (s *session) rotateAbout(dc *gg.Context, deg float64, c geom.Pt) {
	if deg != 0 {
		dc.RotateAbout(geom.Radians(deg), c.X, c.Y)
	}
}

func (s *session) shape(ctx context.Context, dc *gg.Context, l Layer) error {
	w, h := resolveOr(l.Width, s.w, 0), resolveOr(l.Height, s.h, 0)
	if !(w > 0) || !(h > 0) {
		return fmt.Errorf("accent shape needs a positive size, got %vx%v", w, h)
	}
	c := geom.Pt{X: resolveOr(l.X, s.w, s.w/2), Y: resolveOr(l.Y, s.h, s.h/2)}
	s.rotateAbout(dc, l.Rotation, c)
	dc.SetColor(fade(s.color(ctx, l.Color, "accent"), opacity(l)))
	short := math.Min(w, h)
	switch l.Shape {
	case ShapeCircle:
		dc.DrawEllipse(c.X, c.Y, w/2, h/2)
	case ShapeCapsule:
		dc.DrawRoundedRectangle(c.X-w/2, c.Y-h/2, w, h, short/2)
	case ShapeRoundedRect, "":
		r := geom.Clamp(resolveOr(l.Radius, short, 0.12*short), 0, short/2)
		dc.DrawRoundedRectangle(c.X-w/2, c.Y-h/2, w, h, r)
	default:
		return fmt.Errorf("unknown shape %q", l.Shape)
	}
	dc.Fill()
	return nil
}

func (s *session) badge(ctx context.Context, dc *gg.Context, l Layer) {
	txt := strings.TrimSpace(Expand(l.Text, s.vars))
	if l.Text == "" {
		txt = s.vars["index"]
	}
	if txt == "" {
		return
	}
	txt = textlayout.ApplyCase(txt, textCase(l.Transform))
	size := l.FontSize
	if !(size > 0) {
		size = DefaultBadgeSize
	}
	size *= s.m.Preset.FontScale
	weight := l.FontWeight
	if weight <= 0 {
		weight = DefaultHeadingWeight
	}
	face := s.m.Faces.Face(l.FontFamily, weight >= 600, size)
	spacing := l.LetterSpacing * s.m.Preset.FontScale
	padX, padY := l.PaddingX*s.m.Preset.FontScale, l.PaddingY*s.m.Preset.FontScale
	if padX == 0 {
		padX = 0.6 * size
	}
	if padY == 0 {
		padY = 0.3 * size
	}
	tw := textlayout.SpacedWidth(face, txt, spacing)
	pw, ph := tw+2*padX, size+2*padY
	c := geom.Pt{X: resolveOr(l.X, s.w, s.w/2), Y: resolveOr(l.Y, s.h, s.h*0.05)}
	op := opacity(l)

	s.rotateAbout(dc, l.Rotation, c)
	dc.SetColor(fade(s.color(ctx, l.Background, "accent"), op))
	dc.DrawRoundedRectangle(c.X-pw/2, c.Y-ph/2, pw, ph, ph/2)
	dc.Fill()

	fm := textlayout.FaceMetrics(face)
	render.PaintText(dc, render.LayoutText(render.TextSpec{
		Text:          txt,
		Face:          face,
		Size:          size,
		Align:         element.AlignCenter,
		LetterSpacing: spacing,
		LineHeight:    size,
		Anchor:        geom.Pt{X: c.X, Y: c.Y + (fm.Ascent-fm.Descent)/2},
		Color:         fade(s.color(ctx, l.Color, "#FFFFFF"), op),
	}))
}

func (s *session) qr(ctx context.Context, dc *gg.Context, l Layer) error {
	content := strings.TrimSpace(Expand(l.Content, s.vars))
	if content == "" {
		return fmt.Errorf("qr code content is empty")
	}
	size := int(math.Round(resolveOr(l.Width, s.w, DefaultQRSize*s.w)))
	if size < 21 {
		return fmt.Errorf("qr code size %d too small", size)
	}
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return err
	}
	q.ForegroundColor = color.NRGBA{0, 0, 0, 255}
	if l.Color != "" {
		q.ForegroundColor = s.color(ctx, l.Color, "")
	}
	q.BackgroundColor = color.NRGBA{255, 255, 255, 255}
	if l.Background != "" {
		q.BackgroundColor = s.color(ctx, l.Background, "")
	}
	img := q.Image(size)
	c := geom.Pt{X: resolveOr(l.X, s.w, s.w/2), Y: resolveOr(l.Y, s.h, s.h*0.9)}
	s.rotateAbout(dc, l.Rotation, c)
	if op := opacity(l); op < 1 {
		img = assets.Fade(img, op)
	}
	dc.DrawImageAnchored(img, int(math.Round(c.X)), int(math.Round(c.Y)), 0.5, 0.5)
	return nil
}
