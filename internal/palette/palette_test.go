/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package palette

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestParseFormats(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#fff":                 {255, 255, 255, 255},
		"#5B6CFF":              {0x5B, 0x6C, 0xFF, 255},
		"#11223380":            {0x11, 0x22, 0x33, 0x80},
		"rgb(10, 20, 30)":      {10, 20, 30, 255},
		"rgba(10,20,30,0.5)":   {10, 20, 30, 128},
		"  White ":             {255, 255, 255, 255},
		"rgba(300, -4, 0, 1)":  {255, 0, 0, 255},
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "#12", "accent", "rgb(1,2)", "#zzzzzz"} {
		if _, err := Parse(bad); !errors.Is(err, ErrBadColor) {
			t.Fatalf("Parse(%q) expected ErrBadColor, got %v", bad, err)
		}
	}
}

func TestInterpolateEndpointsAndMonotonic(t *testing.T) {
	a := color.NRGBA{10, 200, 30, 255}
	b := color.NRGBA{250, 20, 30, 0}
	if Interpolate(a, b, 0) != a || Interpolate(a, b, 1) != b {
		t.Fatalf("endpoints not exact")
	}
	prev := a
	for i := 1; i <= 100; i++ {
		c := Interpolate(a, b, float64(i)/100)
		if c.R < prev.R || c.G > prev.G || c.B != 30 || c.A > prev.A {
			t.Fatalf("non-monotonic at t=%v: %v after %v", float64(i)/100, c, prev)
		}
		prev = c
	}
}

func TestLightenDarkenAlpha(t *testing.T) {
	c := MustParse("#5B6CFF")
	if Lighten(c, 100) != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("lighten 100 should be white")
	}
	if Darken(c, 100) != (color.NRGBA{0, 0, 0, 255}) {
		t.Fatalf("darken 100 should be black")
	}
	if Lighten(c, 0) != c {
		t.Fatalf("lighten 0 should be identity")
	}
	if WithAlpha(c, 50).A != 128 {
		t.Fatalf("alpha 50 = %d", WithAlpha(c, 50).A)
	}
	if got := HexAlpha(WithAlpha(c, 50)); got != "#5B6CFF80" {
		t.Fatalf("HexAlpha = %s", got)
	}
	if back := MustParse(HexAlpha(WithAlpha(c, 50))); back != WithAlpha(c, 50) {
		t.Fatalf("HexAlpha does not parse back: %v", back)
	}
}

func TestNormalizeAccent(t *testing.T) {
	cases := map[string]string{"": DefaultAccent, "ff0000": "#FF0000", "#abc": "#AABBCC", "#12345": DefaultAccent, "nope": DefaultAccent}
	for in, want := range cases {
		if got := NormalizeAccent(in); got != want {
			t.Fatalf("NormalizeAccent(%q) = %q, want %q", in, got, want)
		}
	}
}

func fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestExtractAccentPicksVividSwatch(t *testing.T) {
	img := fill(100, 100, color.NRGBA{250, 250, 250, 255})
	for y := 0; y < 40; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, color.NRGBA{220, 40, 40, 255})
		}
	}
	got := MustParse(ExtractAccent(img))
	if got.R < 180 || got.G > 80 || got.B > 80 {
		t.Fatalf("expected a red accent, got %v", got)
	}
}

func TestExtractAccentFallsBack(t *testing.T) {
	if got := ExtractAccent(fill(32, 32, color.NRGBA{128, 128, 128, 255})); got != DefaultAccent {
		t.Fatalf("gray image should fall back, got %s", got)
	}
	if got := ExtractAccent(nil); got != DefaultAccent {
		t.Fatalf("nil image should fall back, got %s", got)
	}
}

func TestExtractAccentTieBreakIsStable(t *testing.T) {
	a, b := &bucket{n: 4, sat: 2}, &bucket{n: 4, sat: 2}
	if !beats(a, 0x00F, b, 0xF00) || beats(b, 0xF00, a, 0x00F) {
		t.Fatal("tied buckets should prefer the lower key")
	}
	if !beats(&bucket{n: 5, sat: 2}, 0xF00, a, 0x00F) {
		t.Fatal("more pixels should win a saturation tie")
	}

	img := fill(64, 64, color.NRGBA{220, 40, 40, 255})
	for y := 0; y < 64; y++ {
		for x := 32; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{40, 40, 220, 255})
		}
	}
	first := ExtractAccent(img)
	for i := 0; i < 20; i++ {
		if got := ExtractAccent(img); got != first {
			t.Fatalf("run %d picked %s, first run %s", i, got, first)
		}
	}
}
