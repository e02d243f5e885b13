/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// EncodePNG encodes img with the default compression.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePNG writes img to path, creating parent directories. A missing .png extension is appended.
func WritePNG(path string, img image.Image) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".png") {
		path += ".png"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write png: %w", err)
	}
	return path, nil
}

// WritePNGs writes every panel that has an image into dir as <name>.png and returns the paths.
func WritePNGs(dir string, panels []Rendered) ([]string, error) {
	var paths []string
	for _, p := range panels {
		if p.Image == nil {
			continue
		}
		out, err := WritePNG(filepath.Join(dir, p.Name+".png"), p.Image)
		if err != nil {
			return paths, fmt.Errorf("panel %d: %w", p.Index+1, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}

// panelName returns a zero-padded, file-safe name for panel i of n.
func panelName(i, n int, id string) string {
	pad := 1
	switch {
	case n >= 1000:
		pad = 4
	case n >= 100:
		pad = 3
	case n >= 10:
		pad = 2
	}
	name := fmt.Sprintf("%0*d", pad, i+1)
	if s := sanitize(id); s != "" {
		name += "-" + s
	}
	return name
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
