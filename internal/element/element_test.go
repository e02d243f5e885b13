/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func sample() ScreenshotState {
	return ScreenshotState{
		ID:            "shot-1",
		ScreenshotRef: "file://shot.png",
		Elements: List{
			&Text{Common: Common{ID: "heading", Position: Position{X: 645, Y: 300}, ZIndex: 2}, Text: "Hello", FontSize: 96, Color: "#fff", Align: AlignCenter, LineHeight: 1.1},
			&Mockup{Common: Common{ID: "mockup", ZIndex: 1}, ScreenshotRef: "file://shot.png", BaseWidth: 955, BaseHeight: 2069, Scale: 0.9},
			&Visual{Common: Common{ID: "visual-0", Position: Position{X: 100, Y: 100}, Rotation: 15, ZIndex: 3}, ImageURL: "file://star.png", Width: 64, Height: 64, Scale: 1, Opacity: 0.5},
		},
	}
}

func TestJSONRoundTripKeepsKinds(t *testing.T) {
	s := sample()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"mockup"`) {
		t.Fatalf("kind discriminator missing: %s", data)
	}
	var back ScreenshotState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(back.Elements))
	}
	txt, ok := back.Elements[0].(*Text)
	if !ok || txt.Text != "Hello" || txt.Position.X != 645 || txt.ZIndex != 2 {
		t.Fatalf("text mismatch: %#v", back.Elements[0])
	}
	if m, ok := back.Elements[1].(*Mockup); !ok || m.Scale != 0.9 {
		t.Fatalf("mockup mismatch: %#v", back.Elements[1])
	}
	if v, ok := back.Elements[2].(*Visual); !ok || v.Opacity != 0.5 || v.Rotation != 15 {
		t.Fatalf("visual mismatch: %#v", back.Elements[2])
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := DecodeElement([]byte(`{"kind":"sticker","id":"x"}`))
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	var l List
	if err := json.Unmarshal([]byte(`[{"kind":"text","id":"a"},{"id":"b"}]`), &l); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("list with kindless entry should fail, got %v", err)
	}
}

func TestDecodeAppliesDefaultsAndClamps(t *testing.T) {
	el, err := DecodeElement([]byte(`{"kind":"mockup","id":"m","scale":9,"rotation":-30}`))
	if err != nil {
		t.Fatal(err)
	}
	m := el.(*Mockup)
	if m.Scale != MaxScale || m.Rotation != 330 {
		t.Fatalf("clamp/normalize failed: scale=%v rot=%v", m.Scale, m.Rotation)
	}
	el, _ = DecodeElement([]byte(`{"kind":"visual","id":"v"}`))
	if v := el.(*Visual); v.Scale != 1 || v.Opacity != 1 {
		t.Fatalf("visual defaults: %#v", v)
	}
	el, _ = DecodeElement([]byte(`{"kind":"text","id":"t","align":"justify"}`))
	if tx := el.(*Text); tx.Align != AlignCenter || tx.LineHeight != DefaultLineHeight || tx.FontSize != DefaultFontSize {
		t.Fatalf("text defaults: %#v", tx)
	}
}

func TestMockupScaleAlwaysClamped(t *testing.T) {
	m := &Mockup{}
	for _, s := range []float64{-5, 0, 0.1, 1, 3, 1e9} {
		m.SetScale(s)
		if m.Scale < MinScale || m.Scale > MaxScale {
			t.Fatalf("SetScale(%v) produced %v", s, m.Scale)
		}
	}
}

func TestAddAssignsIDAndZ(t *testing.T) {
	s := sample()
	v := &Visual{ImageURL: "x"}
	if err := s.Add(v); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !strings.HasPrefix(v.ID, "visual-") || v.ZIndex != 4 {
		t.Fatalf("unexpected id/z: %q %d", v.ID, v.ZIndex)
	}
	if err := s.Add(&Text{Common: Common{ID: "heading"}}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := s.Remove("heading"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove("heading"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second remove should fail: %v", err)
	}
}

func TestValidateReportsDuplicates(t *testing.T) {
	s := sample()
	s.Elements = append(s.Elements, &Text{Common: Common{ID: "mockup"}}, &Text{})
	err := s.Validate()
	if !errors.Is(err, ErrDuplicateID) || !errors.Is(err, ErrEmptyID) {
		t.Fatalf("Validate = %v", err)
	}
	valid := sample()
	if err := valid.Validate(); err != nil {
		t.Fatalf("sample should be valid: %v", err)
	}
	empty := ScreenshotState{ID: "empty"}
	if err := empty.Validate(); err != nil {
		t.Fatalf("empty panel is allowed: %v", err)
	}
}

func TestPaintAndHitOrder(t *testing.T) {
	els := []Element{
		&Text{Common: Common{ID: "a", ZIndex: 2}},
		&Text{Common: Common{ID: "b", ZIndex: 1}},
		&Text{Common: Common{ID: "c", ZIndex: 2}},
	}
	var got []string
	for _, el := range PaintOrder(els) {
		got = append(got, el.Base().ID)
	}
	if strings.Join(got, ",") != "b,a,c" {
		t.Fatalf("paint order = %v", got)
	}
	got = nil
	for _, el := range HitOrder(els) {
		got = append(got, el.Base().ID)
	}
	if strings.Join(got, ",") != "c,a,b" {
		t.Fatalf("hit order = %v", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := sample()
	c := s.Clone()
	c.Elements[0].Base().Position.X = 1
	if s.Elements[0].Base().Position.X == 1 {
		t.Fatalf("clone shares element memory")
	}
}

func TestBackgroundNormalize(t *testing.T) {
	b := Background{Mode: "plasma", Gradient: Gradient{Direction: "diagonal"}}
	b.Normalize()
	if b.Mode != BackgroundSolid || b.Gradient.Direction != ToRight || b.Image.Fit != FitCover || b.Image.Opacity != 1 {
		t.Fatalf("normalize: %#v", b)
	}
	if !ToLeft.Horizontal() || ToTop.Horizontal() {
		t.Fatalf("Horizontal mismatch")
	}
}
