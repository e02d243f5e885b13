/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package template holds the declarative layer schema and the headless
// renderer that draws it with the same primitives as the editor.
package template

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"screenshotstudio/internal/device"
)

//go:embed schema/template.schema.json
var schemaJSON []byte

// SchemaJSON returns the embedded JSON Schema for template documents.
func SchemaJSON() []byte { return append([]byte(nil), schemaJSON...) }

var (
	// ErrInvalid is matched by every *ValidationError.
	ErrInvalid = errors.New("template: invalid document")
	// ErrNoDeviceCanvas means neither the device nor "default" has a canvas.
	ErrNoDeviceCanvas = errors.New("template: no canvas for device")
)

// DefaultCanvasKey is the fallback entry of canvas.devices.
const DefaultCanvasKey = "default"

// ValidationError lists every problem found in a template document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "template: invalid document: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

type LayerType string

const (
	LayerHeading     LayerType = "heading"
	LayerSubheading  LayerType = "subheading"
	LayerMockup      LayerType = "mockup"
	LayerAccentShape LayerType = "accentShape"
	LayerBadge       LayerType = "badge"
	LayerQRCode      LayerType = "qrCode"
)

type Shape string

const (
	ShapeRoundedRect Shape = "roundedRect"
	ShapeCircle      Shape = "circle"
	ShapeCapsule     Shape = "capsule"
)

// BackgroundSpec is a device canvas fill. Color fields accept tokens.
type BackgroundSpec struct {
	Type      string  `json:"type,omitempty"`
	Color     string  `json:"color,omitempty"`
	From      string  `json:"from,omitempty"`
	To        string  `json:"to,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Image     string  `json:"image,omitempty"`
	Fit       string  `json:"fit,omitempty"`
	Opacity   float64 `json:"opacity,omitempty"`
}

type DeviceCanvas struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Background BackgroundSpec `json:"background"`
}

type Canvas struct {
	Devices map[string]DeviceCanvas `json:"devices"`
}

// Layer is one typed entry of the layer list. Fields not used by a type
// are ignored for it.
type Layer struct {
	Type     LayerType  `json:"type"`
	X        *Dimension `json:"x,omitempty"`
	Y        *Dimension `json:"y,omitempty"`
	Width    *Dimension `json:"width,omitempty"`
	Height   *Dimension `json:"height,omitempty"`
	Rotation float64    `json:"rotation,omitempty"`
	Opacity  *float64   `json:"opacity,omitempty"`

	// text layers and badge
	Text          string  `json:"text,omitempty"`
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	FontWeight    int     `json:"fontWeight,omitempty"`
	Color         string  `json:"color,omitempty"`
	Background    string  `json:"background,omitempty"`
	Align         string  `json:"align,omitempty"`
	VerticalAlign string  `json:"verticalAlign,omitempty"`
	Transform     string  `json:"transform,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	LineHeight    float64 `json:"lineHeight,omitempty"`

	// mockup
	MaxWidthRatio  float64 `json:"maxWidthRatio,omitempty"`
	MaxHeightRatio float64 `json:"maxHeightRatio,omitempty"`
	Scale          float64 `json:"scale,omitempty"`

	// accentShape
	Shape  Shape      `json:"shape,omitempty"`
	Radius *Dimension `json:"radius,omitempty"`

	// badge
	PaddingX float64 `json:"paddingX,omitempty"`
	PaddingY float64 `json:"paddingY,omitempty"`

	// qrCode
	Content string `json:"content,omitempty"`
}

// Template is a parsed, validated template document.
type Template struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name,omitempty"`
	Version int     `json:"version,omitempty"`
	Canvas  Canvas  `json:"canvas"`
	Layers  []Layer `json:"layers"`
}

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Parse validates data against the template schema and decodes it. Any
// parse or structure problem is a *ValidationError; layouts are never
// guessed.
func Parse(data []byte) (*Template, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("template: compile schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	if !res.Valid() {
		ve := &ValidationError{}
		for _, e := range res.Errors() {
			ve.Problems = append(ve.Problems, e.String())
		}
		return nil, ve
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	return &t, nil
}

// DeviceCanvas picks the canvas for deviceID: the entry keyed by the
// resolved preset id, then any entry whose key resolves to that preset,
// then "default". It returns the key used.
func (t *Template) DeviceCanvas(deviceID string) (DeviceCanvas, string, error) {
	id := device.Resolve(deviceID).ID
	if dc, ok := t.Canvas.Devices[id]; ok {
		return dc, id, nil
	}
	keys := make([]string, 0, len(t.Canvas.Devices))
	for k := range t.Canvas.Devices {
		if k != DefaultCanvasKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if device.Resolve(k).ID == id {
			return t.Canvas.Devices[k], k, nil
		}
	}
	if dc, ok := t.Canvas.Devices[DefaultCanvasKey]; ok {
		return dc, DefaultCanvasKey, nil
	}
	return DeviceCanvas{}, "", fmt.Errorf("%w: %s", ErrNoDeviceCanvas, id)
}
