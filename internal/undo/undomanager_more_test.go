/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"

	"screenshotstudio/internal/element"
)

func TestClearAndStats(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxPerKey: 10, MinInterval: time.Millisecond})
	m.Push(Snapshot{Key: "p", Blob: []byte("abcdef"), TS: time.Now()})
	tb, keys, total := m.Stats()
	if tb == 0 || keys != 1 || total != 1 {
		t.Fatalf("unexpected stats before clear: tb=%d keys=%d total=%d", tb, keys, total)
	}
	m.Clear("p")
	tb2, keys2, total2 := m.Stats()
	if tb2 != 0 || keys2 != 0 || total2 != 0 {
		t.Fatalf("expected cleared stats to be zero, got tb=%d keys=%d total=%d", tb2, keys2, total2)
	}
}

func TestGlobalPruneAcrossKeys(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Push(Snapshot{Key: "one", Blob: []byte("xxxx"), TS: t0})
	m.Push(Snapshot{Key: "two", Blob: []byte("yyyy"), TS: t0.Add(time.Second)})
	m.Push(Snapshot{Key: "two", Blob: []byte("zzzz"), TS: t0.Add(2 * time.Second)})

	if m.CanUndo("one") {
		t.Fatalf("expected the oldest key to have been pruned")
	}
	if !m.CanUndo("two") {
		t.Fatalf("expected key two to keep its snapshots")
	}
}

func TestHistoryRestoresPanelState(t *testing.T) {
	h := NewHistory(Config{MinInterval: time.Millisecond})
	clock := time.Now()
	h.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	st := element.ScreenshotState{ID: "panel-1"}
	mk := &element.Mockup{Scale: 1}
	mk.ID = "mockup"
	if err := st.Add(mk); err != nil {
		t.Fatal(err)
	}
	if err := h.Record(st); err != nil {
		t.Fatalf("Record: %v", err)
	}
	moved := st.Clone()
	m2, _ := moved.Find("mockup")
	m2.Base().Position = element.Position{X: 40, Y: -12}

	back, ok, err := h.Undo(moved)
	if err != nil || !ok {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	el, found := back.Find("mockup")
	if !found || el.Base().Position != (element.Position{}) {
		t.Fatalf("undo did not restore the original position: %#v", el)
	}
	fwd, ok, err := h.Redo(back)
	if err != nil || !ok {
		t.Fatalf("Redo = %v, %v", ok, err)
	}
	el, _ = fwd.Find("mockup")
	if el.Base().Position.X != 40 {
		t.Fatalf("redo lost the move: %#v", el)
	}
	if _, ok, _ := h.Undo(element.ScreenshotState{ID: "other"}); ok {
		t.Fatalf("other panels have their own history")
	}
}
