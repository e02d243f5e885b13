/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"screenshotstudio/internal/assets"
	"screenshotstudio/internal/capture"
	"screenshotstudio/internal/config"
	"screenshotstudio/internal/device"
	"screenshotstudio/internal/export"
	"screenshotstudio/internal/legacy"
	"screenshotstudio/internal/template"
	"screenshotstudio/internal/templatestore"
	"screenshotstudio/internal/textlayout"
)

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

type cliEnv struct {
	cfg      config.AppConfig
	password string
	log      *slog.Logger
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// composer builds a composer whose relative asset refs resolve against baseDir.
func (e *cliEnv) composer(baseDir string) *export.Composer {
	lib := textlayout.NewLibrary()
	if dir := strings.TrimSpace(e.cfg.General.FontDir); dir != "" {
		if n, err := lib.LoadDir(dir); err != nil {
			e.log.Warn("font dir", slog.String("dir", dir), slog.Any("err", err))
		} else {
			e.log.Debug("fonts loaded", slog.String("dir", dir), slog.Int("count", n))
		}
	}
	return export.NewComposer(lib, assets.NewCache(assets.NewFetcher(baseDir, 15*time.Second)))
}

// accent maps the -accent flag: "auto" extracts from the screenshot, empty uses the configured default.
func (e *cliEnv) accent(flagVal string) string {
	switch v := strings.TrimSpace(flagVal); strings.ToLower(v) {
	case "auto":
		return ""
	case "":
		return e.cfg.General.DefaultAccent
	default:
		return v
	}
}

func (e *cliEnv) deviceOr(flagVal, doc string) string {
	if strings.TrimSpace(flagVal) != "" {
		return flagVal
	}
	if strings.TrimSpace(doc) != "" {
		return doc
	}
	return e.cfg.General.DefaultDevice
}

func (e *cliEnv) presets() error {
	for _, p := range device.All() {
		marker := " "
		if p.ID == device.DefaultID {
			marker = "*"
		}
		fmt.Printf("%s %-12s %-14s %dx%d\n", marker, p.ID, p.Name, p.CanvasWidth, p.CanvasHeight)
	}
	return nil
}

func readDoc(path string) (legacy.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return legacy.Config{}, fmt.Errorf("read document: %w", err)
	}
	return legacy.Parse(data), nil
}

// parsePanel reads "i/n" with a zero-based index.
func parsePanel(s string) (int, int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, 1, nil
	}
	a, b, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("panel %q: want index/total", s)
	}
	i, err1 := strconv.Atoi(strings.TrimSpace(a))
	n, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil || n < 1 || i < 0 || i >= n {
		return 0, 0, fmt.Errorf("panel %q: want 0 <= index < total", s)
	}
	return i, n, nil
}

// overrides collects repeated name=value flags such as -set and -var.
type overrides map[string]string

func (o overrides) String() string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k+"="+o[k])
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func (o overrides) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("override %q: want name=value", v)
	}
	o[strings.TrimSpace(k)] = strings.TrimSpace(val)
	return nil
}

type composeFlags struct {
	out    string
	device string
	accent string
	panel  string
}

func (c *composeFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.out, "o", "", "output PNG path")
	fs.StringVar(&c.device, "device", "", "device preset id or alias (default: document, then config)")
	fs.StringVar(&c.accent, "accent", "", "accent color hex, or \"auto\" to extract from the screenshot")
	fs.StringVar(&c.panel, "panel", "", "panel position index/total for seamless gradients, e.g. 1/5")
}

// parseArgs lets flags appear before or after the positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

func (e *cliEnv) render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var cf composeFlags
	cf.bind(fs)
	pos, err := parseArgs(fs, args)
	if err != nil {
		return usageError{err.Error()}
	}
	if len(pos) != 1 || cf.out == "" {
		return usageError{"render requires <doc.json> and -o <out.png>"}
	}
	i, n, err := parsePanel(cf.panel)
	if err != nil {
		return usageError{err.Error()}
	}
	doc, err := readDoc(pos[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	dev := e.deviceOr(cf.device, doc.Device)
	img, rerr := e.composer(filepath.Dir(pos[0])).ComposeLegacy(ctx, doc, e.accent(cf.accent), dev, export.AtPanel(i, n))
	return e.finish(img, rerr, cf.out)
}

// finish writes img even when some elements failed; those failures are reported after.
func (e *cliEnv) finish(img image.Image, rerr error, out string) error {
	if img == nil {
		return rerr
	}
	path, err := export.WritePNG(out, img)
	if err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	if rerr != nil {
		fmt.Println("Warning: some elements were skipped:")
		fmt.Println(rerr)
	}
	return nil
}

// loadTemplate reads ref as a file when it exists, else looks it up in the configured library.
func (e *cliEnv) loadTemplate(ctx context.Context, ref string) (*template.Template, error) {
	if fi, err := os.Stat(ref); err == nil && !fi.IsDir() {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("read template: %w", err)
		}
		return template.Parse(data)
	}
	store, err := templatestore.Open(ctx, e.cfg.Templates, e.password)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Get(ctx, ref)
}

func (e *cliEnv) template(args []string) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	var cf composeFlags
	cf.bind(fs)
	ov := overrides{}
	fs.Var(ov, "set", "template placeholder override name=value (repeatable)")
	vars := overrides{}
	fs.Var(vars, "var", "template text variable name=value (repeatable)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return usageError{err.Error()}
	}
	if len(pos) != 2 || cf.out == "" {
		return usageError{"template requires <tpl.json|id>, <doc.json> and -o <out.png>"}
	}
	i, n, err := parsePanel(cf.panel)
	if err != nil {
		return usageError{err.Error()}
	}
	ctx, cancel := signalContext()
	defer cancel()
	tpl, err := e.loadTemplate(ctx, pos[0])
	if err != nil {
		return err
	}
	doc, err := readDoc(pos[1])
	if err != nil {
		return err
	}
	dev := e.deviceOr(cf.device, doc.Device)
	img, rerr := e.composer(filepath.Dir(pos[1])).ComposeTemplate(ctx, tpl, doc, e.accent(cf.accent), dev, ov, export.AtPanel(i, n), export.WithVars(vars))
	return e.finish(img, rerr, cf.out)
}

func (e *cliEnv) templates() error {
	ctx, cancel := signalContext()
	defer cancel()
	store, err := templatestore.Open(ctx, e.cfg.Templates, e.password)
	if err != nil {
		return err
	}
	defer store.Close()
	list, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No templates found.")
		return nil
	}
	for _, t := range list {
		fmt.Printf("%-24s v%-3d %s\n", t.ID, t.Version, t.Name)
	}
	return nil
}

// expandDocs accepts files and directories; a directory contributes its *.json files in name order.
func expandDocs(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		fi, err := os.Stat(a)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", a, err)
		}
		if !fi.IsDir() {
			out = append(out, a)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(a, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}

func (e *cliEnv) batch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	out := fs.String("o", "", "output directory (default: <export_dir>/<preset>)")
	preset := fs.String("preset", string(export.PresetAppStore), "export preset: appstore|proof")
	formats := fs.String("formats", "", "comma separated formats overriding the preset: png,zip,pdf")
	dev := fs.String("device", "", "device preset id or alias")
	accent := fs.String("accent", "", "accent color hex, or \"auto\" per panel")
	workers := fs.Int("workers", e.cfg.General.Workers, "concurrent panel renders (0 = CPU count)")
	tplRef := fs.String("template", "", "template file or library id")
	ov := overrides{}
	fs.Var(ov, "set", "template placeholder override name=value (repeatable)")
	vars := overrides{}
	fs.Var(vars, "var", "template text variable name=value (repeatable)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return usageError{err.Error()}
	}
	if len(pos) == 0 {
		return usageError{"batch requires at least one <doc.json> or directory"}
	}
	paths, err := expandDocs(pos)
	if err != nil {
		return err
	}
	docs := make([]legacy.Config, 0, len(paths))
	for _, p := range paths {
		d, err := readDoc(p)
		if err != nil {
			return err
		}
		if d.ID == "" {
			d.ID = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		}
		docs = append(docs, d)
	}

	ctx, cancel := signalContext()
	defer cancel()
	opt := export.BatchOptions{
		Preset:    export.PresetName(strings.ToLower(*preset)),
		OutDir:    *out,
		Device:    *dev,
		Accent:    e.accent(*accent),
		Workers:   *workers,
		Overrides: ov,
		Vars:      vars,
	}
	if opt.OutDir == "" {
		opt.OutDir = filepath.Join(e.cfg.General.ExportDir, string(opt.Preset))
	}
	if opt.Device == "" && len(docs) > 0 && docs[0].Device == "" {
		opt.Device = e.cfg.General.DefaultDevice
	}
	if strings.TrimSpace(*formats) != "" {
		opt.Formats = strings.Split(*formats, ",")
	}
	if *tplRef != "" {
		if opt.Template, err = e.loadTemplate(ctx, *tplRef); err != nil {
			return err
		}
	}
	base := "."
	if len(paths) > 0 {
		base = filepath.Dir(paths[0])
	}
	res, err := export.Batch(ctx, e.composer(base), docs, opt)
	for _, p := range res.PNGs {
		fmt.Println("Wrote", p)
	}
	if res.Bundle != "" {
		fmt.Println("Bundle", res.Bundle)
	}
	if res.Proof != "" {
		fmt.Println("Proof sheet", res.Proof)
	}
	var warn error
	for _, p := range res.Panels {
		if p.Image != nil && p.Err != nil {
			warn = errors.Join(warn, fmt.Errorf("panel %s: %w", p.Name, p.Err))
		}
	}
	if warn != nil {
		fmt.Println("Warning: some elements were skipped:")
		fmt.Println(warn)
	}
	return err
}

func (e *cliEnv) capture(args []string) error {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	out := fs.String("o", "", "output PNG path")
	dev := fs.String("device", "", "device preset id or alias")
	browser := fs.String("browser", e.cfg.Capture.BrowserPath, "Chromium-based browser executable (default: detect)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return usageError{err.Error()}
	}
	if len(pos) != 1 || *out == "" {
		return usageError{"capture requires <url> and -o <shot.png>"}
	}
	ctx, cancel := signalContext()
	defer cancel()
	p := device.Resolve(e.deviceOr(*dev, ""))
	img, err := capture.Capture(ctx, pos[0], p, capture.Options{BrowserPath: *browser, Timeout: e.cfg.Capture.EffectiveTimeout()})
	if err != nil {
		return err
	}
	path, err := export.WritePNG(*out, img)
	if err != nil {
		return err
	}
	fmt.Println("Wrote", path)
	return nil
}
