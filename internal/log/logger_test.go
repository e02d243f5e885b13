/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func lastJSONLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

func TestInitJSONCarriesStaticAndComponentAttrs(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Writer: &buf})
	t.Cleanup(func() { Init(Options{Level: "error"}) })

	l := WithOperation(WithComponent("render"), "paint")
	l.Info("hello world", slog.String("k", "v"))

	m := lastJSONLine(t, buf.Bytes())
	if m["app"] != "screenshotstudio" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "render" || m["op"] != "paint" {
		t.Fatalf("component/op mismatch: %v", m)
	}
	if m["msg"] != "hello world" || m["k"] != "v" {
		t.Fatalf("record mismatch: %v", m)
	}
}

func TestWithRenderAddsPanelAttrs(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Writer: &buf})
	t.Cleanup(func() { Init(Options{Level: "error"}) })

	ctx := WithRender(context.Background(), "iphone-6.7", 1, 3)
	L().InfoContext(ctx, "panel done")

	m := lastJSONLine(t, buf.Bytes())
	if m["device"] != "iphone-6.7" {
		t.Fatalf("device attr = %v", m["device"])
	}
	if m["panel"] != float64(1) || m["panels"] != float64(3) {
		t.Fatalf("panel attrs = %v / %v", m["panel"], m["panels"])
	}
}

func TestInitWritesRotatingFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "studio.json")
	var console bytes.Buffer
	Init(Options{Level: "info", Format: "console", File: fpath, Writer: &console})
	t.Cleanup(func() { Init(Options{Level: "error"}) })

	L().Warn("disk check")
	if !strings.Contains(console.String(), "WRN disk check") {
		t.Fatalf("console output missing record: %q", console.String())
	}
}
