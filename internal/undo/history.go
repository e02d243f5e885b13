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
	"encoding/json"
	"fmt"
	"time"

	"screenshotstudio/internal/element"
)

// History is the editor-facing view of a Manager: it stores panel states keyed by their id.
type History struct {
	m   *Manager
	now func() time.Time
}

func NewHistory(cfg Config) *History {
	return &History{m: NewManager(cfg), now: time.Now}
}

// Record stores st as the state to return to; call it before applying a change.
func (h *History) Record(st element.ScreenshotState) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", st.ID, err)
	}
	h.m.Push(Snapshot{Key: st.ID, Blob: blob, TS: h.now()})
	return nil
}

// Undo returns the previous state of current.ID, if any.
func (h *History) Undo(current element.ScreenshotState) (element.ScreenshotState, bool, error) {
	return h.step(current, h.m.Undo)
}

// Redo returns the state undone last, if any.
func (h *History) Redo(current element.ScreenshotState) (element.ScreenshotState, bool, error) {
	return h.step(current, h.m.Redo)
}

func (h *History) CanUndo(id string) bool { return h.m.CanUndo(id) }
func (h *History) CanRedo(id string) bool { return h.m.CanRedo(id) }
func (h *History) Clear(id string)        { h.m.Clear(id) }

func (h *History) step(current element.ScreenshotState, pop func(string, []byte) (Snapshot, bool)) (element.ScreenshotState, bool, error) {
	blob, err := json.Marshal(current)
	if err != nil {
		return current, false, fmt.Errorf("snapshot %s: %w", current.ID, err)
	}
	s, ok := pop(current.ID, blob)
	if !ok {
		return current, false, nil
	}
	var st element.ScreenshotState
	if err := json.Unmarshal(s.Blob, &st); err != nil {
		return current, false, fmt.Errorf("restore %s: %w", current.ID, err)
	}
	return st, true, nil
}
