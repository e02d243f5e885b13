/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"screenshotstudio/internal/version"
)

// ManifestName is the metadata entry written into every bundle.
const ManifestName = "manifest.json"

// Manifest describes a bundle for upload tooling.
type Manifest struct {
	Generator string          `json:"generator"`
	Created   time.Time       `json:"created"`
	Device    string          `json:"device"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Panels    []ManifestPanel `json:"panels"`
}

type ManifestPanel struct {
	File  string `json:"file"`
	Index int    `json:"index"`
	Error string `json:"error,omitempty"`
}

// WriteBundle packages the panel images as PNG files into a ZIP archive at outPath,
// plus a manifest.json. Panels without an image are listed in the manifest with their error.
func WriteBundle(outPath, dev string, panels []Rendered) error {
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}
	zw, f, err := createZip(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	man := Manifest{Generator: "screenshotstudio " + version.Version, Created: time.Now().UTC(), Device: dev}
	for _, p := range panels {
		entry := ManifestPanel{Index: p.Index}
		if p.Err != nil {
			entry.Error = p.Err.Error()
		}
		if p.Image != nil {
			b := p.Image.Bounds()
			man.Width, man.Height = b.Dx(), b.Dy()
			data, err := EncodePNG(p.Image)
			if err != nil {
				return err
			}
			entry.File = p.Name + ".png"
			if err := addZipFile(zw, entry.File, data); err != nil {
				return fmt.Errorf("zip add image: %w", err)
			}
		}
		man.Panels = append(man.Panels, entry)
	}
	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}
	if err := addZipFile(zw, ManifestName, data); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return f.Close()
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create zip: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
