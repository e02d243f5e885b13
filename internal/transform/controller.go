/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package transform implements interactive move, resize and rotate of the
// selected element. A Controller serves exactly one pointer at a time.
package transform

import (
	"log/slog"

	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
	"screenshotstudio/internal/hittest"
	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/render"
)

// Mode is the current interaction kind.
type Mode int

const (
	Idle Mode = iota
	Move
	Resize
	Rotate
)

func (m Mode) String() string {
	switch m {
	case Move:
		return "move"
	case Resize:
		return "resize"
	case Rotate:
		return "rotate"
	default:
		return "idle"
	}
}

const (
	// RotateOffset is the distance of the rotate handle above the top edge.
	RotateOffset = 40
	// DefaultHandleRadius is the pick tolerance around a handle, canvas px.
	DefaultHandleRadius = 24
)

// Corner indexes into Handles.Corners.
type Corner int

const (
	NW Corner = iota
	NE
	SE
	SW
)

// Handles are the selection controls in canvas coordinates. Corners and the
// rotate handle are placed in the element's local frame and then rotated
// with it.
type Handles struct {
	Frame     render.Frame
	Corners   [4]geom.Pt
	Rotate    geom.Pt
	Resizable bool
}

// drag is the state captured once at pointer down; every move recomputes
// from it rather than from the previous move.
type drag struct {
	id       string
	pointer  geom.Pt
	position element.Position
	scale    float64
	rotation float64
	pivot    geom.Pt
	dist     float64
	angle    float64
}

// Controller drives the transform state machine over one screenshot.
type Controller struct {
	state    *element.ScreenshotState
	metrics  render.Metrics
	selected string
	mode     Mode
	start    drag

	// HandleRadius overrides DefaultHandleRadius when > 0.
	HandleRadius float64
	// OnChange fires on every intermediate drag step, for redraw.
	OnChange func(el element.Element)
	// OnCommit fires once when a drag ends, with the final values.
	OnCommit func(el element.Element)
	// OnSelect fires when the selection changes; id is empty on deselect.
	OnSelect func(id string)

	log *slog.Logger
}

// NewController binds a controller to state measured with m.
func NewController(state *element.ScreenshotState, m render.Metrics) *Controller {
	return &Controller{state: state, metrics: m, log: applog.WithComponent("transform")}
}

// SetState switches to another screenshot. Any drag in progress is
// dropped without commit and the selection is cleared.
func (c *Controller) SetState(state *element.ScreenshotState) {
	c.state = state
	c.mode = Idle
	c.selected = ""
}

func (c *Controller) Mode() Mode { return c.mode }

// Selected returns the selected element id, if any.
func (c *Controller) Selected() (string, bool) {
	if c.selected == "" {
		return "", false
	}
	if _, ok := c.find(c.selected); !ok {
		return "", false
	}
	return c.selected, true
}

// Select sets the selection; an unknown or empty id deselects.
func (c *Controller) Select(id string) {
	if _, ok := c.find(id); !ok {
		id = ""
	}
	if id == c.selected {
		return
	}
	c.selected = id
	if c.OnSelect != nil {
		c.OnSelect(id)
	}
}

func (c *Controller) find(id string) (element.Element, bool) {
	if c.state == nil || id == "" {
		return nil, false
	}
	return c.state.Find(id)
}

func (c *Controller) radius() float64 {
	if c.HandleRadius > 0 {
		return c.HandleRadius
	}
	return DefaultHandleRadius
}

// Handles returns the controls of the selected element.
func (c *Controller) Handles() (Handles, bool) {
	el, ok := c.find(c.selected)
	if !ok {
		return Handles{}, false
	}
	return HandlesFor(el, c.metrics), true
}

// HandlesFor computes the controls for el.
func HandlesFor(el element.Element, m render.Metrics) Handles {
	f := render.FrameOf(el, m)
	r := f.Rect
	h := Handles{Frame: f}
	local := [4]geom.Pt{
		NW: r.Min(),
		NE: {X: r.X + r.W, Y: r.Y},
		SE: r.Max(),
		SW: {X: r.X, Y: r.Y + r.H},
	}
	for i, p := range local {
		h.Corners[i] = f.ToCanvas(p)
	}
	h.Rotate = f.ToCanvas(geom.Pt{X: r.X + r.W/2, Y: r.Y - RotateOffset})
	_, h.Resizable = el.(element.Scalable)
	return h
}

// PointerDown starts an interaction at p and returns the resulting mode.
// Handles of the selected element take precedence; a press on the selected
// body starts a move; a press on another element selects it; a press on
// empty canvas deselects.
func (c *Controller) PointerDown(p geom.Pt) Mode {
	c.mode = Idle
	if el, ok := c.find(c.selected); ok {
		h := HandlesFor(el, c.metrics)
		rad := c.radius()
		switch {
		case p.Dist(h.Rotate) <= rad:
			c.begin(el, p, Rotate)
			return c.mode
		case h.Resizable && nearAny(p, h.Corners, rad):
			c.begin(el, p, Resize)
			return c.mode
		}
	}
	var els []element.Element
	if c.state != nil {
		els = c.state.Elements
	}
	id, ok := hittest.ElementAt(p, els, c.metrics)
	switch {
	case !ok:
		c.Select("")
	case id == c.selected:
		el, _ := c.find(id)
		c.begin(el, p, Move)
	default:
		c.Select(id)
	}
	return c.mode
}

func nearAny(p geom.Pt, pts [4]geom.Pt, rad float64) bool {
	for _, q := range pts {
		if p.Dist(q) <= rad {
			return true
		}
	}
	return false
}

func (c *Controller) begin(el element.Element, p geom.Pt, mode Mode) {
	b := el.Base()
	f := render.FrameOf(el, c.metrics)
	d := drag{id: b.ID, pointer: p, position: b.Position, rotation: b.Rotation, scale: 1}
	if s, ok := el.(element.Scalable); ok {
		d.scale = s.CurrentScale()
	}
	switch mode {
	case Resize:
		d.pivot = f.Rect.Center()
	case Rotate:
		d.pivot = f.Pivot
	}
	d.dist = p.Dist(d.pivot)
	d.angle = geom.Angle(d.pivot, p)
	c.start = d
	c.mode = mode
	c.log.Debug("drag start", slog.String("id", d.id), slog.String("mode", mode.String()))
}

// PointerMove applies the drag at p. It reports whether anything changed.
func (c *Controller) PointerMove(p geom.Pt) bool {
	if c.mode == Idle {
		return false
	}
	el, ok := c.find(c.start.id)
	if !ok {
		c.mode = Idle
		return false
	}
	b := el.Base()
	switch c.mode {
	case Move:
		b.Position = element.Position{
			X: c.start.position.X + p.X - c.start.pointer.X,
			Y: c.start.position.Y + p.Y - c.start.pointer.Y,
		}
	case Resize:
		s, ok := el.(element.Scalable)
		if !ok {
			return false
		}
		if c.start.dist < 1e-6 {
			return false
		}
		s.SetScale(c.start.scale * p.Dist(c.start.pivot) / c.start.dist)
	case Rotate:
		if p.Dist(c.start.pivot) < 1e-6 {
			return false
		}
		b.SetRotation(c.start.rotation + geom.Angle(c.start.pivot, p) - c.start.angle)
	}
	if c.OnChange != nil {
		c.OnChange(el)
	}
	return true
}

// PointerUp ends any drag and commits it. It reports whether a drag was
// committed.
func (c *Controller) PointerUp() bool { return c.end("up") }

// PointerLeave behaves like PointerUp.
func (c *Controller) PointerLeave() bool { return c.end("leave") }

func (c *Controller) end(reason string) bool {
	mode := c.mode
	c.mode = Idle
	if mode == Idle {
		return false
	}
	el, ok := c.find(c.start.id)
	if !ok {
		return false
	}
	c.log.Debug("drag end", slog.String("id", c.start.id), slog.String("mode", mode.String()), slog.String("reason", reason))
	if c.OnCommit != nil {
		c.OnCommit(el)
	}
	return true
}
