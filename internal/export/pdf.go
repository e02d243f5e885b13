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
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// ProofOptions controls the proof sheet layout.
// Units are points. The sheet is A4 landscape unless PageW/PageH are set.
//
// Panels are laid out in a single row per page when Seamless is set, edge
// to edge, so a sliced background can be checked for continuity; otherwise
// they are laid out in a grid with gutters and labels.
type ProofOptions struct {
	Title    string
	PageW    float64
	PageH    float64
	Margin   float64
	Gutter   float64
	Columns  int
	Seamless bool
}

func (o ProofOptions) withDefaults() ProofOptions {
	if o.PageW <= 0 || o.PageH <= 0 {
		o.PageW, o.PageH = 842, 595
	}
	if o.Margin <= 0 {
		o.Margin = 28
	}
	if o.Gutter < 0 || (!o.Seamless && o.Gutter == 0) {
		o.Gutter = 14
	}
	if o.Seamless {
		o.Gutter = 0
	}
	if o.Columns <= 0 {
		o.Columns = 5
	}
	if o.Title == "" {
		o.Title = "Screenshot proof"
	}
	return o
}

const labelHeight = 14

// WriteProofSheet lays out the panel images on PDF pages at outPath.
func WriteProofSheet(outPath string, panels []Rendered, opt ProofOptions) error {
	opt = opt.withDefaults()
	var withImages []Rendered
	for _, p := range panels {
		if p.Image != nil {
			withImages = append(withImages, p)
		}
	}
	if len(withImages) == 0 {
		return errors.New("no panels to print")
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: opt.PageW, Ht: opt.PageH},
	})
	pdf.SetTitle(opt.Title, true)
	pdf.SetAuthor("Screenshot Studio", false)
	pdf.SetAutoPageBreak(false, 0)

	cols := opt.Columns
	if opt.Seamless {
		cols = len(withImages)
	}
	b := withImages[0].Image.Bounds()
	aspect := float64(b.Dy()) / float64(b.Dx())

	// cell size: fit cols across and one row (plus label) into the content area
	contentW := opt.PageW - 2*opt.Margin
	contentH := opt.PageH - 2*opt.Margin - labelHeight*2
	cellW := (contentW - float64(cols-1)*opt.Gutter) / float64(cols)
	cellH := cellW * aspect
	if cellH > contentH {
		cellH = contentH
		cellW = cellH / aspect
	}
	rows := int(math.Max(1, math.Floor((contentH+opt.Gutter)/(cellH+labelHeight+opt.Gutter))))
	perPage := rows * cols

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	for i, p := range withImages {
		slot := i % perPage
		if slot == 0 {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Text(opt.Margin, opt.Margin, opt.Title)
		}
		r, c := slot/cols, slot%cols
		x := opt.Margin + float64(c)*(cellW+opt.Gutter)
		y := opt.Margin + labelHeight + float64(r)*(cellH+labelHeight+opt.Gutter)

		data, err := EncodePNG(p.Image)
		if err != nil {
			return fmt.Errorf("panel %d: %w", p.Index+1, err)
		}
		name := fmt.Sprintf("panel-%d", p.Index)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, x, y, cellW, cellH, false, opts, 0, "")
		if !opt.Seamless {
			pdf.SetDrawColor(200, 200, 200)
			pdf.SetLineWidth(0.5)
			pdf.Rect(x, y, cellW, cellH, "D")
		}
		pdf.SetFont("Helvetica", "", 8)
		label := p.Name
		if p.Err != nil {
			label += " (warnings)"
		}
		pdf.Text(x, y+cellH+10, label)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
