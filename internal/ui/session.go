/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"screenshotstudio/internal/device"
	"screenshotstudio/internal/element"
	"screenshotstudio/internal/export"
	"screenshotstudio/internal/geom"
	"screenshotstudio/internal/legacy"
	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/render"
	"screenshotstudio/internal/transform"
	"screenshotstudio/internal/undo"
)

// Session is one open document in the editor. It owns the panel state and
// routes pointer input through the transform controller; the fyne widget is
// only a view over it.
type Session struct {
	Path   string
	State  element.ScreenshotState
	Global element.GlobalSettings
	Device string
	Accent string

	composer *export.Composer
	metrics  render.Metrics
	ctrl     *transform.Controller
	history  *undo.History
	dirty    bool

	// OnChange fires after any edit, drag step, undo or redo.
	OnChange func()
	// OnSelect mirrors the controller's selection callback.
	OnSelect func(id string)

	log *slog.Logger
}

// OpenSession reads path. A document with a "screens" array is a project
// and its first screen is edited; anything else goes through legacy migration.
func OpenSession(path string, c *export.Composer) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	var probe struct {
		Screens json.RawMessage `json:"screens"`
	}
	var s *Session
	if json.Unmarshal(data, &probe) == nil && len(probe.Screens) > 0 {
		var p element.Project
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decode project %s: %w", path, err)
		}
		if len(p.Screens) == 0 {
			return nil, fmt.Errorf("project %s has no screens", path)
		}
		s = newSession(p.Screens[0], p.Settings, c)
	} else {
		s = NewSession(legacy.Parse(data), c)
	}
	s.Path = path
	s.log = s.log.With(slog.String("path", path))
	return s, nil
}

// NewSession starts an editing session over a migrated legacy document.
func NewSession(cfg legacy.Config, c *export.Composer) *Session {
	return newSession(legacy.Decode(cfg, device.Resolve(cfg.Device)), legacy.DecodeGlobal(cfg), c)
}

func newSession(st element.ScreenshotState, g element.GlobalSettings, c *export.Composer) *Session {
	if c == nil {
		c = export.NewComposer(nil, nil)
	}
	g.Background.Normalize()
	s := &Session{
		State:    st,
		Global:   g,
		Device:   device.Resolve(g.Device).ID,
		composer: c,
		history:  undo.NewHistory(undo.Config{MaxBytes: 32 * 1024 * 1024, MaxPerKey: 50, MinInterval: -1}),
		log:      applog.WithComponent("ui"),
	}
	if s.State.ID == "" {
		s.State.ID = element.NewID("screenshot")
	}
	for _, el := range s.State.Elements {
		el.Normalize()
	}
	s.bind()
	return s
}

// bind (re)creates metrics and the controller for the current device.
func (s *Session) bind() {
	if s.metrics.Faces != nil {
		s.metrics.Faces.Close()
	}
	s.metrics = render.NewMetrics(s.Device, s.composer.Library)
	s.ctrl = transform.NewController(&s.State, s.metrics)
	s.ctrl.OnChange = func(element.Element) { s.changed() }
	s.ctrl.OnCommit = func(el element.Element) {
		s.dirty = true
		s.log.Debug("transform committed", slog.String("id", el.Base().ID))
		s.changed()
	}
	s.ctrl.OnSelect = func(id string) {
		if s.OnSelect != nil {
			s.OnSelect(id)
		}
		s.changed()
	}
}

func (s *Session) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Session) Controller() *transform.Controller { return s.ctrl }
func (s *Session) Metrics() render.Metrics           { return s.metrics }
func (s *Session) Dirty() bool                       { return s.dirty }

// Canvas is the panel size in pixels.
func (s *Session) Canvas() (w, h int) {
	return s.metrics.Preset.CanvasWidth, s.metrics.Preset.CanvasHeight
}

// Render composes the panel exactly as the exporter would.
func (s *Session) Render(ctx context.Context) (image.Image, error) {
	return s.Snapshot()(ctx)
}

// Snapshot captures the current document and returns a render job that
// is safe to run off the UI goroutine while editing continues.
func (s *Session) Snapshot() func(context.Context) (image.Image, error) {
	st, g, accent, dev := s.State.Clone(), s.Global, s.Accent, s.Device
	return func(ctx context.Context) (image.Image, error) {
		return s.composer.ComposeElements(ctx, st, g, accent, dev)
	}
}

// PointerDown starts a drag at p (canvas pixels). The pre-drag state is
// recorded for undo only when a drag actually starts.
func (s *Session) PointerDown(p geom.Pt) transform.Mode {
	before := s.State.Clone()
	mode := s.ctrl.PointerDown(p)
	if mode != transform.Idle {
		s.record(before)
	}
	return mode
}

func (s *Session) PointerMove(p geom.Pt) bool { return s.ctrl.PointerMove(p) }
func (s *Session) PointerUp() bool            { return s.ctrl.PointerUp() }
func (s *Session) PointerLeave() bool         { return s.ctrl.PointerLeave() }

func (s *Session) record(st element.ScreenshotState) {
	if err := s.history.Record(st); err != nil {
		s.log.Warn("undo snapshot failed", slog.Any("err", err))
	}
}

// Undo restores the previous state. It reports whether anything changed.
func (s *Session) Undo() bool { return s.step(s.history.Undo) }

// Redo reapplies the last undone state.
func (s *Session) Redo() bool { return s.step(s.history.Redo) }

func (s *Session) CanUndo() bool { return s.history.CanUndo(s.State.ID) }
func (s *Session) CanRedo() bool { return s.history.CanRedo(s.State.ID) }

func (s *Session) step(fn func(element.ScreenshotState) (element.ScreenshotState, bool, error)) bool {
	s.ctrl.PointerLeave()
	sel, _ := s.ctrl.Selected()
	st, ok, err := fn(s.State)
	if err != nil {
		s.log.Warn("undo step failed", slog.Any("err", err))
		return false
	}
	if !ok {
		return false
	}
	s.State = st
	s.ctrl.SetState(&s.State)
	s.ctrl.Select(sel)
	s.dirty = true
	s.changed()
	return true
}

// SetDevice switches the target preset. Element positions are kept as they are.
func (s *Session) SetDevice(id string) {
	s.Device = device.Resolve(id).ID
	s.Global.Device = s.Device
	s.bind()
	s.dirty = true
	s.changed()
}

// AddText appends a text element centered on the canvas and selects it.
func (s *Session) AddText(text string) (string, error) {
	w, h := s.Canvas()
	t := &element.Text{Text: text, FontSize: 64, FontWeight: 600}
	t.Position = element.Position{X: float64(w) / 2, Y: float64(h) / 2}
	t.Normalize()
	before := s.State.Clone()
	if err := s.State.Add(t); err != nil {
		return "", err
	}
	s.record(before)
	s.dirty = true
	s.ctrl.Select(t.ID)
	return t.ID, nil
}

// DeleteSelected removes the selected element.
func (s *Session) DeleteSelected() bool {
	id, ok := s.ctrl.Selected()
	if !ok {
		return false
	}
	before := s.State.Clone()
	if err := s.State.Remove(id); err != nil {
		return false
	}
	s.record(before)
	s.dirty = true
	s.ctrl.Select("")
	return true
}

// Document is the saved form: a single-screen project.
func (s *Session) Document() element.Project {
	g := s.Global
	g.Device = s.Device
	return element.Project{Settings: g, Screens: []element.ScreenshotState{s.State}}
}

// Legacy flattens the session into the legacy format. Texts beyond the
// heading and subheading are lost.
func (s *Session) Legacy() legacy.Config {
	g := s.Global
	g.Device = s.Device
	return legacy.Encode(s.State, g)
}

// Save writes the document to Path via a temp file and rename.
func (s *Session) Save() error {
	if s.Path == "" {
		return errors.New("document has no path")
	}
	if err := writeJSON(s.Path, s.Document()); err != nil {
		return err
	}
	s.dirty = false
	s.log.Info("document saved")
	return nil
}

// Autosave writes the document next to Path as <name>.crash.json, for crash recovery.
func (s *Session) Autosave() (string, error) {
	path := s.Path
	if path == "" {
		path = filepath.Join(os.TempDir(), s.State.ID+".json")
	}
	out := path[:len(path)-len(filepath.Ext(path))] + ".crash.json"
	return out, writeJSON(out, s.Document())
}

// Close releases the session's font faces.
func (s *Session) Close() {
	if s.metrics.Faces != nil {
		s.metrics.Faces.Close()
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
