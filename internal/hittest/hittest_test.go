/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package hittest

import (
	"math/rand"
	"testing"

	"screenshotstudio/internal/element"
	"screenshotstudio/internal/geom"
	"screenshotstudio/internal/render"
	"screenshotstudio/internal/textlayout"
)

func metrics(t *testing.T) render.Metrics {
	t.Helper()
	m := render.NewMetrics("iphone", textlayout.NewLibrary())
	t.Cleanup(m.Faces.Close)
	return m
}

func text(id string, z int, s string) *element.Text {
	t := &element.Text{Text: s, FontSize: 64, LineHeight: 1.2, Align: element.AlignLeft}
	t.ID, t.ZIndex = id, z
	t.Position = element.Position{X: 100, Y: 300}
	return t
}

func TestRotationInvariance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		r := geom.R(rng.Float64()*500-250, rng.Float64()*500-250, 1+rng.Float64()*300, 1+rng.Float64()*300)
		deg := rng.Float64()*720 - 360
		inside := geom.Pt{X: r.X + rng.Float64()*r.W, Y: r.Y + rng.Float64()*r.H}
		// keep off the exact edge where rounding decides
		inside = r.Center().Add(inside.Sub(r.Center()).Scale(0.999))
		p := geom.RotatePoint(inside, r.Center(), deg)
		if !IsPointInRotatedRect(p, r, deg) {
			t.Fatalf("rotated inside point reported outside: r=%v deg=%v p=%v", r, deg, p)
		}
	}
}

func TestTopmostTextWins(t *testing.T) {
	m := metrics(t)
	a := text("low", 1, "Same words")
	b := text("high", 2, "Same words")
	p := geom.Pt{X: 120, Y: 290}
	for _, els := range [][]element.Element{{a, b}, {b, a}} {
		id, ok := ElementAt(p, els, m)
		if !ok || id != "high" {
			t.Fatalf("ElementAt = %q, %v", id, ok)
		}
	}
	all := AllElementsAt(p, []element.Element{a, b}, m)
	if len(all) != 2 || all[0] != "high" || all[1] != "low" {
		t.Fatalf("AllElementsAt = %v", all)
	}
}

func TestTextHitIsPerLine(t *testing.T) {
	m := metrics(t)
	el := text("t", 1, "A much longer first line\nB")
	l := render.LayoutText(render.TextSpecFor(el, m))
	if len(l.Lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(l.Lines))
	}
	second := l.Lines[1]
	beside := geom.Pt{X: second.X + second.Width + 3*LineMargin + 100, Y: second.Baseline - 10}
	if !l.Bounds().Contains(beside) {
		t.Fatalf("probe should be inside the block bounds")
	}
	if Hit(beside, el, m) {
		t.Fatalf("empty space beside a short line must not hit")
	}
	if !Hit(geom.Pt{X: second.X + second.Width/2, Y: second.Baseline - 10}, el, m) {
		t.Fatalf("point on the second line should hit")
	}
	// the margin extends the band slightly past the glyphs
	if !Hit(geom.Pt{X: second.X - LineMargin/2, Y: second.Baseline}, el, m) {
		t.Fatalf("point within margin should hit")
	}
}

func TestRotatedTextPivotsAtAnchor(t *testing.T) {
	m := metrics(t)
	el := text("t", 1, "Rotate")
	el.Rotation = 90
	// rotated a quarter turn clockwise about (100,300), the line runs downwards
	if !Hit(geom.Pt{X: 100, Y: 340}, el, m) {
		t.Fatalf("point along rotated baseline should hit")
	}
	if Hit(geom.Pt{X: 180, Y: 290}, el, m) {
		t.Fatalf("point along unrotated baseline should miss")
	}
}

func TestMockupAndVisualHits(t *testing.T) {
	m := metrics(t)
	mk := &element.Mockup{Scale: 0.5}
	mk.ID, mk.ZIndex = "mockup", 1
	v := &element.Visual{Width: 100, Height: 100, Scale: 1, Opacity: 1}
	v.ID, v.ZIndex = "sticker", 5
	v.Position = element.Position{X: 40, Y: 40}
	els := []element.Element{mk, v}

	center := render.MockupRect(mk, m).Rect.Center()
	if id, ok := ElementAt(center, els, m); !ok || id != "mockup" {
		t.Fatalf("mockup center = %q, %v", id, ok)
	}
	if id, ok := ElementAt(geom.Pt{X: 40, Y: 40}, els, m); !ok || id != "sticker" {
		t.Fatalf("visual = %q, %v", id, ok)
	}
	if _, ok := ElementAt(geom.Pt{X: 5, Y: 2700}, els, m); ok {
		t.Fatalf("empty canvas corner should miss")
	}
}
