/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package background

import (
	"image"
	"image/color"
	"testing"

	"github.com/fogleman/gg"

	"screenshotstudio/internal/element"
	"screenshotstudio/internal/palette"
)

func TestGradientSlicesAreContinuous(t *testing.T) {
	for _, dir := range []element.Direction{element.ToRight, element.ToLeft} {
		g := element.Gradient{From: "#FF0000", To: "#0000FF", Direction: dir}
		for i := 0; i < 2; i++ {
			_, end := Slice(g, Panel{Index: i, Total: 3})
			start, _ := Slice(g, Panel{Index: i + 1, Total: 3})
			if end != start {
				t.Fatalf("%s: panel %d end %v != panel %d start %v", dir, i, end, i+1, start)
			}
		}
	}
}

func TestGradientSliceEndpoints(t *testing.T) {
	g := element.Gradient{From: "#FF0000", To: "#0000FF", Direction: element.ToRight}
	start, _ := Slice(g, Panel{Index: 0, Total: 3})
	_, end := Slice(g, Panel{Index: 2, Total: 3})
	if start != palette.MustParse("#FF0000") || end != palette.MustParse("#0000FF") {
		t.Fatalf("set endpoints mismatch: %v %v", start, end)
	}
	g.Direction = element.ToLeft
	start, _ = Slice(g, Panel{Index: 0, Total: 3})
	if start != palette.MustParse("#0000FF") {
		t.Fatalf("right-to-left should start at the To color on the left, got %v", start)
	}
	g.Direction = element.ToBottom
	s, e := Slice(g, Panel{Index: 1, Total: 3})
	if s != palette.MustParse("#FF0000") || e != palette.MustParse("#0000FF") {
		t.Fatalf("vertical gradient must not be sliced: %v %v", s, e)
	}
}

func at(dc *gg.Context, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(dc.Image().At(x, y)).(color.NRGBA)
}

func TestPaintSolidAndFallback(t *testing.T) {
	dc := gg.NewContext(20, 10)
	Paint(dc, element.Background{Mode: element.BackgroundSolid, Color: "#336699"}, Panel{}, nil)
	if c := at(dc, 10, 5); c != (color.NRGBA{0x33, 0x66, 0x99, 255}) {
		t.Fatalf("solid fill = %v", c)
	}
	dc = gg.NewContext(20, 10)
	Paint(dc, element.Background{Mode: element.BackgroundImage, Color: "#00FF00", Image: element.BackgroundImageSpec{URL: "missing.png"}}, Panel{}, nil)
	if c := at(dc, 3, 3); c != (color.NRGBA{0, 255, 0, 255}) {
		t.Fatalf("image fallback = %v", c)
	}
}

func TestPaintImageCoverWithOpacity(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 255 // opaque white
	}
	dc := gg.NewContext(16, 16)
	Paint(dc, element.Background{Mode: element.BackgroundImage, Color: "#000000", Image: element.BackgroundImageSpec{Fit: element.FitCover, Opacity: 0.5}}, Panel{}, src)
	c := at(dc, 8, 8)
	if c.R < 120 || c.R > 135 {
		t.Fatalf("half-opacity white over black should be mid gray, got %v", c)
	}
}

func TestPaintHorizontalGradientEdges(t *testing.T) {
	dc := gg.NewContext(100, 4)
	bg := element.Background{Mode: element.BackgroundGradient, Gradient: element.Gradient{From: "#000000", To: "#FFFFFF", Direction: element.ToRight}}
	Paint(dc, bg, Panel{Index: 1, Total: 2}, nil)
	left, right := at(dc, 0, 2), at(dc, 99, 2)
	if left.R < 120 || left.R > 135 || right.R < 245 {
		t.Fatalf("second half of a 2-panel gradient: left %v right %v", left, right)
	}
}
