/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
	"screenshotstudio/internal/legacy"
	"screenshotstudio/internal/render"
	"screenshotstudio/internal/transform"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(legacy.Config{ID: "p1", Device: "iphone-6.7", Heading: legacy.Text{Text: "Track everything"}}, nil)
	t.Cleanup(s.Close)
	return s
}

func mockupCenter(t *testing.T, s *Session) geom.Pt {
	t.Helper()
	el, ok := s.State.Find(legacy.MockupID)
	if !ok {
		t.Fatal("mockup missing")
	}
	return render.FrameOf(el, s.Metrics()).Rect.Center()
}

func mockupPos(t *testing.T, s *Session) element.Position {
	t.Helper()
	el, ok := s.State.Find(legacy.MockupID)
	if !ok {
		t.Fatal("mockup missing")
	}
	return el.Base().Position
}

func TestSessionDragUndoRedo(t *testing.T) {
	s := newTestSession(t)
	changes := 0
	s.OnChange = func() { changes++ }
	c := mockupCenter(t, s)

	if mode := s.PointerDown(c); mode != transform.Idle {
		t.Fatalf("first press = %v, want select only", mode)
	}
	s.PointerUp()
	if s.CanUndo() {
		t.Fatal("selection alone must not record undo")
	}
	if mode := s.PointerDown(c); mode != transform.Move {
		t.Fatalf("second press = %v", mode)
	}
	s.PointerMove(c.Add(geom.Pt{X: 40, Y: -12}))
	if !s.PointerUp() {
		t.Fatal("release should commit")
	}
	if p := mockupPos(t, s); p.X != 40 || p.Y != -12 {
		t.Fatalf("after drag = %+v", p)
	}
	if !s.Dirty() || changes == 0 {
		t.Fatalf("dirty=%v changes=%d", s.Dirty(), changes)
	}

	if !s.Undo() {
		t.Fatal("undo failed")
	}
	if p := mockupPos(t, s); p.X != 0 || p.Y != 0 {
		t.Fatalf("after undo = %+v", p)
	}
	if id, ok := s.Controller().Selected(); !ok || id != legacy.MockupID {
		t.Fatalf("selection lost on undo: %q %v", id, ok)
	}
	if !s.Redo() {
		t.Fatal("redo failed")
	}
	if p := mockupPos(t, s); p.X != 40 || p.Y != -12 {
		t.Fatalf("after redo = %+v", p)
	}
	if s.Redo() {
		t.Fatal("second redo should be empty")
	}
}

func TestSessionAddDeleteText(t *testing.T) {
	s := newTestSession(t)
	n := len(s.State.Elements)
	id, err := s.AddText("New")
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := s.Controller().Selected(); !ok || got != id {
		t.Fatalf("added text not selected: %q", got)
	}
	el, _ := s.State.Find(id)
	if el.Base().ZIndex != s.State.TopZ() {
		t.Fatalf("added text should be on top, z=%d top=%d", el.Base().ZIndex, s.State.TopZ())
	}
	if !s.DeleteSelected() || len(s.State.Elements) != n {
		t.Fatalf("delete failed, %d elements", len(s.State.Elements))
	}
	if s.DeleteSelected() {
		t.Fatal("nothing selected, delete must be a no-op")
	}
	s.Undo()
	if _, ok := s.State.Find(id); !ok {
		t.Fatal("undo of delete should restore the text")
	}
}

func TestSessionSaveAndReopen(t *testing.T) {
	s := newTestSession(t)
	id, err := s.AddText("Third text")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err == nil {
		t.Fatal("save without path should fail")
	}
	s.Path = filepath.Join(t.TempDir(), "panel.json")
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Fatal("save should clear dirty")
	}
	back, err := OpenSession(s.Path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer back.Close()
	if back.Device != "iphone-6.7" || back.State.ID != "p1" {
		t.Fatalf("reopened device=%q id=%q", back.Device, back.State.ID)
	}
	if _, ok := back.State.Find(id); !ok {
		t.Fatal("extra text lost on reopen")
	}
	if lc := s.Legacy(); lc.Heading.Text != "Track everything" {
		t.Fatalf("legacy heading = %q", lc.Heading.Text)
	}
}

func TestOpenSessionLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	doc := `{"device":"ipad-12.9","heading":{"text":"Old"},"mockup":{"x":10,"y":20}}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenSession(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Device != "ipad-12.9" {
		t.Fatalf("device = %q", s.Device)
	}
	if p := mockupPos(t, s); p.X != 10 || p.Y != 20 {
		t.Fatalf("mockup = %+v", p)
	}
	if _, err := OpenSession(filepath.Join(t.TempDir(), "missing.json"), nil); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestSessionAutosave(t *testing.T) {
	s := newTestSession(t)
	s.Path = filepath.Join(t.TempDir(), "panel.json")
	out, err := s.Autosave()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(out) != "panel.crash.json" {
		t.Fatalf("autosave path = %s", out)
	}
	if _, err := os.Stat(s.Path); !os.IsNotExist(err) {
		t.Fatal("autosave must not touch the document itself")
	}
}

func TestSessionSetDeviceAndRender(t *testing.T) {
	s := newTestSession(t)
	s.SetDevice("ipad-12.9")
	w, h := s.Canvas()
	img, _ := s.Render(context.Background())
	if img == nil {
		t.Fatal("render returned no image")
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		t.Fatalf("render %v, canvas %dx%d", b, w, h)
	}
	if s.Document().Settings.Device != "ipad-12.9" {
		t.Fatal("device not stored in document")
	}
}

func TestFitViewRoundTrip(t *testing.T) {
	v := FitView(1290, 2796, 800, 600, 20)
	if v.Zoom <= 0 || v.CanvasH*v.Zoom > 560+1e-9 {
		t.Fatalf("zoom %v does not fit", v.Zoom)
	}
	if math.Abs(v.OffsetX*2+v.CanvasW*v.Zoom-800) > 1e-9 {
		t.Fatalf("not centered horizontally: %+v", v)
	}
	p := geom.Pt{X: 100, Y: 250}
	x, y := v.ToScreen(p)
	if q := v.ToCanvas(x, y); math.Abs(q.X-p.X) > 1e-9 || math.Abs(q.Y-p.Y) > 1e-9 {
		t.Fatalf("round trip %v -> %v", p, q)
	}

	z := v.ZoomAt(400, 300, 2)
	before, after := v.ToCanvas(400, 300), z.ToCanvas(400, 300)
	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Fatalf("zoom anchor moved %v -> %v", before, after)
	}
	if FitView(0, 0, 100, 100, 0).Zoom != 1 {
		t.Fatal("empty canvas should keep zoom 1")
	}
}
