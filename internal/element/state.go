/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrDuplicateID = errors.New("element: duplicate id")
	ErrEmptyID     = errors.New("element: empty id")
	ErrNotFound    = errors.New("element: not found")
)

// ScreenshotState is one marketing panel and its elements.
type ScreenshotState struct {
	ID            string `json:"id"`
	ScreenshotRef string `json:"screenshotRef"`
	Elements      List   `json:"elements"`
	ThemeRef      string `json:"themeRef,omitempty"`
}

// NewID returns a fresh element id with the given prefix.
func NewID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// Find returns the element with id.
func (s *ScreenshotState) Find(id string) (Element, bool) {
	for _, el := range s.Elements {
		if el.Base().ID == id {
			return el, true
		}
	}
	return nil, false
}

// Add appends el, assigning an id when empty and a zIndex above every
// existing element when zIndex is 0.
func (s *ScreenshotState) Add(el Element) error {
	c := el.Base()
	if c.ID == "" {
		c.ID = NewID(string(el.Kind()))
	}
	if _, dup := s.Find(c.ID); dup {
		return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
	}
	if c.ZIndex == 0 && len(s.Elements) > 0 {
		c.ZIndex = s.TopZ() + 1
	}
	el.Normalize()
	s.Elements = append(s.Elements, el)
	return nil
}

// Remove deletes the element with id.
func (s *ScreenshotState) Remove(id string) error {
	for i, el := range s.Elements {
		if el.Base().ID == id {
			s.Elements = append(s.Elements[:i], s.Elements[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// TopZ is the highest zIndex in the panel, or 0 when empty.
func (s *ScreenshotState) TopZ() int {
	top := 0
	for i, el := range s.Elements {
		if z := el.Base().ZIndex; i == 0 || z > top {
			top = z
		}
	}
	return top
}

// Validate reports empty and duplicate ids.
func (s *ScreenshotState) Validate() error {
	seen := make(map[string]struct{}, len(s.Elements))
	var errs []error
	for i, el := range s.Elements {
		id := el.Base().ID
		if id == "" {
			errs = append(errs, fmt.Errorf("%w at %d", ErrEmptyID, i))
			continue
		}
		if _, ok := seen[id]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateID, id))
		}
		seen[id] = struct{}{}
	}
	return errors.Join(errs...)
}

// Clone deep-copies the panel.
func (s ScreenshotState) Clone() ScreenshotState {
	s.Elements = s.Elements.Clone()
	return s
}

// PaintOrder returns the elements sorted ascending by zIndex. Ties keep
// list order.
func PaintOrder(els []Element) []Element {
	out := append([]Element(nil), els...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Base().ZIndex < out[j].Base().ZIndex })
	return out
}

// HitOrder is the reverse of PaintOrder: the element painted last is tested first.
func HitOrder(els []Element) []Element {
	out := PaintOrder(els)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
