/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import "testing"

func TestResolveIPadVariants(t *testing.T) {
	a := Resolve("ipad pro 11")
	b := Resolve("iPad")
	if a.ID != IPadID || b.ID != IPadID {
		t.Fatalf("expected both to resolve to %s, got %s and %s", IPadID, a.ID, b.ID)
	}
	if c := Resolve("  IPAD_Air "); c.ID != IPadID {
		t.Fatalf("unknown ipad string resolved to %s", c.ID)
	}
}

func TestResolveUnknownFallsBackToIPhone(t *testing.T) {
	for _, s := range []string{"Pixel 8", "", "   ", "galaxy"} {
		if p := Resolve(s); p.ID != DefaultID {
			t.Fatalf("Resolve(%q) = %s, want %s", s, p.ID, DefaultID)
		}
	}
}

func TestResolveAliasesAndIDs(t *testing.T) {
	cases := map[string]string{
		"iPhone":             "iphone-6.7",
		"iphone-6.9":         "iphone-6.9",
		"iPhone 16 Pro Max":  "iphone-6.9",
		"iphone_8_plus":      "iphone-5.5",
		" IPHONE   XS  MAX ": "iphone-6.5",
		"ipad-12.9":          IPadID,
	}
	for in, want := range cases {
		if got := Resolve(in).ID; got != want {
			t.Fatalf("Resolve(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestPresetGeometry(t *testing.T) {
	p, ok := Lookup("iphone-6.7")
	if !ok {
		t.Fatalf("lookup failed")
	}
	if p.CanvasWidth != 1290 || p.CanvasHeight != 2796 || p.FontScale != 1 {
		t.Fatalf("unexpected canvas: %+v", p)
	}
	if p.Mockup.BaseWidth <= 0 || p.Mockup.BaseHeight <= p.Mockup.BaseWidth || p.DefaultTextWidth >= float64(p.CanvasWidth) {
		t.Fatalf("unexpected mockup geometry: %+v", p.Mockup)
	}
	ipad, _ := Lookup(IPadID)
	if !ipad.Tablet() || ipad.FontScale <= 1 {
		t.Fatalf("ipad preset: %+v", ipad)
	}
}

func TestPresetsAreImmutable(t *testing.T) {
	p := Resolve("iphone")
	p.Aliases[0] = "mutated"
	p.CanvasWidth = 1
	if q := Resolve("iphone"); q.Aliases[0] == "mutated" || q.CanvasWidth != 1290 {
		t.Fatalf("registry mutated through returned preset")
	}
	if len(All()) != 5 {
		t.Fatalf("expected 5 presets, got %d", len(All()))
	}
}
