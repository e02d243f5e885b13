/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"screenshotstudio/internal/device"
)

func TestViewportFor(t *testing.T) {
	for _, p := range device.All() {
		vp := ViewportFor(p)
		if vp.TargetW <= 0 || vp.TargetH <= vp.TargetW/2 {
			t.Fatalf("%s: bad target %dx%d", p.ID, vp.TargetW, vp.TargetH)
		}
		wantScale := 3.0
		if p.Tablet() {
			wantScale = 2
		}
		if vp.Scale != wantScale {
			t.Fatalf("%s: scale %v", p.ID, vp.Scale)
		}
		if d := float64(vp.Width)*vp.Scale - float64(vp.TargetW); d > vp.Scale || d < -vp.Scale {
			t.Fatalf("%s: css width %d does not cover target %d", p.ID, vp.Width, vp.TargetW)
		}
	}
}

func TestDetectBrowser(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "chromium")
	if err := os.WriteFile(present, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	prev := browserCandidates
	t.Cleanup(func() { browserCandidates = prev })

	browserCandidates = func() []string { return []string{filepath.Join(dir, "missing"), dir, present} }
	got, err := DetectBrowser()
	if err != nil || got != present {
		t.Fatalf("DetectBrowser = %q, %v", got, err)
	}
	browserCandidates = func() []string { return []string{filepath.Join(dir, "missing")} }
	if _, err := DetectBrowser(); !errors.Is(err, ErrNoBrowser) {
		t.Fatalf("want ErrNoBrowser, got %v", err)
	}
}

func TestCaptureRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "example.com", "file:///etc/passwd", "ftp://host/x"} {
		if _, err := Capture(context.Background(), u, device.Default(), Options{BrowserPath: "/nonexistent"}); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("Capture(%q) want ErrInvalidURL, got %v", u, err)
		}
	}
}
