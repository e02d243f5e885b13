/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import (
	"math"
	"math/rand"
	"testing"

	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
	"screenshotstudio/internal/render"
	"screenshotstudio/internal/textlayout"
)

func setup(t *testing.T) (*Controller, *element.Mockup, *element.ScreenshotState) {
	t.Helper()
	m := render.NewMetrics("iphone-6.7", textlayout.NewLibrary())
	t.Cleanup(m.Faces.Close)
	mk := &element.Mockup{Scale: 1}
	mk.ID, mk.ZIndex = "mockup", 1
	st := &element.ScreenshotState{ID: "s1", Elements: element.List{mk}}
	return NewController(st, m), mk, st
}

func TestSelectThenMove(t *testing.T) {
	c, mk, _ := setup(t)
	center := render.FrameOf(mk, c.metrics).Rect.Center()
	// first press only selects
	if mode := c.PointerDown(center); mode != Idle {
		t.Fatalf("press on unselected element = %v", mode)
	}
	if id, ok := c.Selected(); !ok || id != "mockup" {
		t.Fatalf("selected = %q %v", id, ok)
	}
	c.PointerUp()
	if mode := c.PointerDown(center); mode != Move {
		t.Fatalf("press on selected body = %v", mode)
	}
	changes, commits := 0, 0
	c.OnChange = func(element.Element) { changes++ }
	c.OnCommit = func(element.Element) { commits++ }
	c.PointerMove(center.Add(geom.Pt{X: 10, Y: 5}))
	c.PointerMove(center.Add(geom.Pt{X: 30, Y: -20}))
	if mk.Position.X != 30 || mk.Position.Y != -20 {
		t.Fatalf("position = %+v, want start + raw delta", mk.Position)
	}
	if commits != 0 || changes != 2 {
		t.Fatalf("changes=%d commits=%d before release", changes, commits)
	}
	if !c.PointerUp() || commits != 1 || c.Mode() != Idle {
		t.Fatalf("release did not commit once: commits=%d mode=%v", commits, c.Mode())
	}
	if c.PointerUp() || commits != 1 {
		t.Fatalf("second release must not commit again")
	}
}

func TestPressOnEmptyDeselects(t *testing.T) {
	c, _, _ := setup(t)
	c.Select("mockup")
	var last = "unset"
	c.OnSelect = func(id string) { last = id }
	c.PointerDown(geom.Pt{X: 2, Y: 2})
	if _, ok := c.Selected(); ok || last != "" {
		t.Fatalf("selection should clear, got last=%q", last)
	}
}

func TestResizeUsesCenterDistanceRatio(t *testing.T) {
	c, mk, _ := setup(t)
	c.Select("mockup")
	h, _ := c.Handles()
	if !h.Resizable {
		t.Fatalf("mockup must be resizable")
	}
	se := h.Corners[SE]
	if mode := c.PointerDown(se); mode != Resize {
		t.Fatalf("press on corner = %v", mode)
	}
	center := h.Frame.Rect.Center()
	half := center.Add(se.Sub(center).Scale(0.5))
	c.PointerMove(half)
	if math.Abs(mk.Scale-0.5) > 1e-9 {
		t.Fatalf("scale = %v, want 0.5", mk.Scale)
	}
	// recomputed from the snapshot, not compounded
	c.PointerMove(half)
	if math.Abs(mk.Scale-0.5) > 1e-9 {
		t.Fatalf("scale drifted to %v", mk.Scale)
	}
	c.PointerLeave()
	if c.Mode() != Idle {
		t.Fatalf("leave must reset mode")
	}
}

func TestResizeNeverLeavesBounds(t *testing.T) {
	c, mk, _ := setup(t)
	rng := rand.New(rand.NewSource(3))
	c.Select("mockup")
	for i := 0; i < 200; i++ {
		h, _ := c.Handles()
		corner := h.Corners[rng.Intn(4)]
		if c.PointerDown(corner) != Resize {
			t.Fatalf("corner press did not start resize")
		}
		for j := 0; j < 10; j++ {
			p := geom.Pt{X: (rng.Float64() - 0.5) * 1e7, Y: (rng.Float64() - 0.5) * 1e7}
			if j%3 == 0 {
				p = h.Frame.Rect.Center()
			}
			c.PointerMove(p)
			if mk.Scale < element.MinScale || mk.Scale > element.MaxScale {
				t.Fatalf("scale escaped bounds: %v", mk.Scale)
			}
		}
		c.PointerUp()
	}
}

func TestRotateAddsAngleDelta(t *testing.T) {
	c, mk, _ := setup(t)
	mk.Rotation = 10
	c.Select("mockup")
	h, _ := c.Handles()
	if mode := c.PointerDown(h.Rotate); mode != Rotate {
		t.Fatalf("press on rotate handle = %v", mode)
	}
	pivot := h.Frame.Pivot
	// swing the pointer a quarter turn clockwise around the pivot
	c.PointerMove(geom.RotatePoint(h.Rotate, pivot, 90))
	if math.Abs(mk.Rotation-100) > 1e-6 {
		t.Fatalf("rotation = %v, want 100", mk.Rotation)
	}
	c.PointerMove(geom.RotatePoint(h.Rotate, pivot, -30))
	if math.Abs(mk.Rotation-340) > 1e-6 {
		t.Fatalf("rotation = %v, want 340 (normalised)", mk.Rotation)
	}
	c.PointerUp()
}

func TestHandlesFollowRotation(t *testing.T) {
	c, mk, _ := setup(t)
	mk.Rotation = 90
	c.Select("mockup")
	h, _ := c.Handles()
	center := h.Frame.Rect.Center()
	// rotated a quarter turn, the rotate handle sits to the right of the center
	if h.Rotate.X <= center.X || math.Abs(h.Rotate.Y-center.Y) > 1e-6 {
		t.Fatalf("rotate handle = %v for center %v", h.Rotate, center)
	}
	if c.PointerDown(h.Rotate) != Rotate {
		t.Fatalf("rotated handle not picked")
	}
}

func TestTextIsNotResizable(t *testing.T) {
	c, _, st := setup(t)
	txt := &element.Text{Text: "Hello", FontSize: 64, LineHeight: 1.2}
	txt.ID, txt.ZIndex = "t", 2
	txt.Position = element.Position{X: 100, Y: 200}
	if err := st.Add(txt); err != nil {
		t.Fatal(err)
	}
	c.Select("t")
	h, _ := c.Handles()
	if h.Resizable {
		t.Fatalf("text must not expose resize handles")
	}
	if mode := c.PointerDown(h.Corners[NW]); mode == Resize {
		t.Fatalf("text corner press started a resize")
	}
	c.PointerUp()
}
