/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"screenshotstudio/internal/device"
	"screenshotstudio/internal/legacy"
	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/template"
)

// PresetName represents a named export preset.
type PresetName string

const (
	// PresetAppStore writes upload-ready PNGs and a ZIP bundle.
	PresetAppStore PresetName = "appstore"
	// PresetProof writes PNGs and a seamless PDF proof sheet for review.
	PresetProof PresetName = "proof"
)

// BatchOptions controls a multi-panel export.
//
// Path semantics:
//   - OutDir is created if needed; outputs are OutDir/png/<nn>-<id>.png,
//     OutDir/screenshots.zip and OutDir/proof.pdf.
//   - Device and Accent apply to every panel when set; otherwise each
//     document's own device and its extracted accent are used.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset    PresetName
	Formats   []string // allowed: png, zip, pdf; empty means preset defaults
	OutDir    string
	Device    string
	Accent    string
	Workers   int
	Template  *template.Template // optional; panels render through it when set
	Overrides map[string]string
	Vars      map[string]string // template text and QR placeholders
}

// BatchResult lists what a batch wrote.
type BatchResult struct {
	Panels []Rendered
	PNGs   []string
	Bundle string
	Proof  string
}

// Failed reports panels that produced no image.
func (r BatchResult) Failed() []Rendered {
	var out []Rendered
	for _, p := range r.Panels {
		if p.Image == nil {
			out = append(out, p)
		}
	}
	return out
}

// Batch renders docs as one panel set, left to right, and writes the preset's formats.
// Soft element failures are kept on each panel; the returned error covers write
// failures and panels that could not be rendered at all.
func Batch(ctx context.Context, c *Composer, docs []legacy.Config, opt BatchOptions) (BatchResult, error) {
	var res BatchResult
	if c == nil {
		return res, errors.New("composer is nil")
	}
	if len(docs) == 0 {
		return res, errors.New("nothing to export")
	}
	formats, err := batchFormats(opt)
	if err != nil {
		return res, err
	}
	out := opt.OutDir
	if out == "" {
		out = filepath.Join("export", string(opt.Preset))
	}
	l := applog.WithOperation(applog.WithComponent("export"), "batch").With(
		slog.String("preset", string(opt.Preset)), slog.Int("panels", len(docs)),
	)

	res.Panels = RenderPanels(ctx, len(docs), opt.Workers, func(ctx context.Context, i, n int) (image.Image, error) {
		if opt.Template != nil {
			return c.ComposeTemplate(ctx, opt.Template, docs[i], opt.Accent, opt.Device, opt.Overrides, AtPanel(i, n), WithVars(opt.Vars))
		}
		return c.ComposeLegacy(ctx, docs[i], opt.Accent, opt.Device, AtPanel(i, n))
	})
	for i := range res.Panels {
		res.Panels[i].Name = panelName(i, len(docs), docs[i].ID)
		if p := res.Panels[i]; p.Err != nil {
			l.Warn("panel rendered with errors", slog.String("panel", p.Name), slog.Any("err", p.Err))
		}
	}

	dev := opt.Device
	if dev == "" {
		dev = docs[0].Device
	}
	dev = device.Resolve(dev).ID
	for _, f := range formats {
		switch f {
		case "png":
			paths, err := WritePNGs(filepath.Join(out, "png"), res.Panels)
			res.PNGs = paths
			if err != nil {
				return res, err
			}
		case "zip":
			res.Bundle = filepath.Join(out, "screenshots.zip")
			if err := WriteBundle(res.Bundle, dev, res.Panels); err != nil {
				return res, fmt.Errorf("bundle: %w", err)
			}
		case "pdf":
			res.Proof = filepath.Join(out, "proof.pdf")
			po := ProofOptions{Title: fmt.Sprintf("%s proof (%s)", presetTitle(opt.Preset), dev), Seamless: true}
			if err := WriteProofSheet(res.Proof, res.Panels, po); err != nil {
				return res, fmt.Errorf("proof sheet: %w", err)
			}
		}
	}
	l.Info("batch export finished", slog.String("out", out), slog.Int("failed", len(res.Failed())))
	if failed := res.Failed(); len(failed) > 0 {
		errs := make([]error, 0, len(failed))
		for _, p := range failed {
			errs = append(errs, fmt.Errorf("panel %s: %w", p.Name, p.Err))
		}
		return res, errors.Join(errs...)
	}
	return res, nil
}

func batchFormats(opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case "png", "zip", "pdf":
			out = append(out, f)
		default:
			return nil, fmt.Errorf("unknown format: %s", f)
		}
	}
	return out, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetAppStore:
		return []string{"png", "zip"}
	case PresetProof:
		return []string{"png", "pdf"}
	default:
		return []string{"png"}
	}
}

func presetTitle(p PresetName) string {
	if p == "" {
		return "Export"
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}
