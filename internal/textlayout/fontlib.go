/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	applog "screenshotstudio/internal/log"
)

// Library stores parsed fonts mapped by family and boldness. It is filled
// during startup and read-only afterwards, so one Library can serve every
// concurrent render session.
type Library struct {
	fonts map[fontKey]*opentype.Font
	// embedded Go fonts used when a family is missing
	regular, bold *truetype.Font
}

type fontKey struct {
	family string
	bold   bool
}

// NewLibrary returns a library holding only the embedded fallback fonts.
func NewLibrary() *Library {
	reg, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse embedded regular font: %v", err))
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		panic(fmt.Sprintf("parse embedded bold font: %v", err))
	}
	return &Library{fonts: make(map[fontKey]*opentype.Font), regular: reg, bold: bold}
}

func familyKey(family string) string { return strings.ToLower(strings.TrimSpace(family)) }

// LoadTTF loads a font file into the library under the given family.
func (l *Library) LoadTTF(family string, bold bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return l.Add(family, bold, data)
}

// Add parses raw TTF/OTF bytes into the library.
func (l *Library) Add(family string, bold bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	l.fonts[fontKey{family: familyKey(family), bold: bold}] = f
	return nil
}

// LoadDir loads every .ttf/.otf file in dir. The family is the file name up
// to the first '-' ("Inter-Bold.ttf" is family "Inter", bold). Files that
// fail to parse are reported but do not stop the scan.
func (l *Library) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read font dir: %w", err)
	}
	var errs []error
	n := 0
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		family, bold := parseFontFileName(e.Name())
		if err := l.LoadTTF(family, bold, filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

func parseFontFileName(name string) (family string, bold bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	family, style, _ := strings.Cut(base, "-")
	s := strings.ToLower(style)
	bold = strings.Contains(s, "bold") || strings.Contains(s, "black") || strings.Contains(s, "heavy")
	return family, bold
}

// Has reports whether family was loaded (in any weight).
func (l *Library) Has(family string) bool {
	k := familyKey(family)
	_, a := l.fonts[fontKey{k, false}]
	_, b := l.fonts[fontKey{k, true}]
	return a || b
}

func (l *Library) find(family string, bold bool) *opentype.Font {
	k := familyKey(family)
	if f, ok := l.fonts[fontKey{k, bold}]; ok {
		return f
	}
	if f, ok := l.fonts[fontKey{k, !bold}]; ok {
		return f
	}
	return nil
}

// Faces is a per-session face cache. font.Face values are not safe for
// concurrent use, so every render session (one panel, one editor) owns its
// own Faces over the shared Library.
type Faces struct {
	lib    *Library
	mu     sync.Mutex
	faces  map[faceKey]font.Face
	warned map[string]bool
	log    *slog.Logger
}

type faceKey struct {
	family string
	bold   bool
	size   int64 // size in 1/64 px
}

// NewFaces creates a face cache; a nil lib uses only embedded fonts.
func NewFaces(lib *Library) *Faces {
	if lib == nil {
		lib = NewLibrary()
	}
	return &Faces{lib: lib, faces: map[faceKey]font.Face{}, warned: map[string]bool{}, log: applog.WithComponent("textlayout")}
}

// Face resolves family/bold at sizePx pixels. A missing family logs one
// warning per session and falls back to the embedded Go font.
func (f *Faces) Face(family string, bold bool, sizePx float64) font.Face {
	if !(sizePx > 0) {
		sizePx = 1
	}
	key := faceKey{family: familyKey(family), bold: bold, size: int64(math.Round(sizePx * 64))}
	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face
	}
	size := float64(key.size) / 64
	var face font.Face
	if ot := f.lib.find(family, bold); ot != nil {
		var err error
		face, err = opentype.NewFace(ot, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
		if err != nil {
			f.log.Warn("font face failed, using fallback", slog.String("family", family), slog.Any("err", err))
			face = nil
		}
	} else if key.family != "" && !f.warned[key.family] {
		f.warned[key.family] = true
		f.log.Warn("font family not loaded, using fallback", slog.String("family", family))
	}
	if face == nil {
		tt := f.lib.regular
		if bold {
			tt = f.lib.bold
		}
		face = truetype.NewFace(tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	}
	f.faces[key] = face
	return face
}

// Close releases the cached faces.
func (f *Faces) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, face := range f.faces {
		_ = face.Close()
		delete(f.faces, k)
	}
}
