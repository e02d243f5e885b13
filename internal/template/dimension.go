/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Unit int

const (
	// UnitAuto is a bare number: a ratio when in [0,1], pixels otherwise.
	UnitAuto Unit = iota
	UnitPercent
	UnitPx
)

// Dimension is a position or size relative to a canvas dimension.
type Dimension struct {
	Value float64
	Unit  Unit
}

func Ratio(v float64) *Dimension  { return &Dimension{Value: v} }
func Pixels(v float64) *Dimension { return &Dimension{Value: v, Unit: UnitPx} }

// ParseDimension reads "0.5", "50%" or "120px".
func ParseDimension(s string) (Dimension, error) {
	v := strings.TrimSpace(s)
	unit := UnitAuto
	switch {
	case strings.HasSuffix(v, "%"):
		unit, v = UnitPercent, strings.TrimSpace(strings.TrimSuffix(v, "%"))
	case strings.HasSuffix(v, "px"):
		unit, v = UnitPx, strings.TrimSpace(strings.TrimSuffix(v, "px"))
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Dimension{}, fmt.Errorf("dimension %q: %w", s, err)
	}
	return Dimension{Value: f, Unit: unit}, nil
}

func (d *Dimension) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*d = Dimension{Value: f}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("dimension: want number or string, got %s", data)
	}
	v, err := ParseDimension(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Dimension) MarshalJSON() ([]byte, error) {
	switch d.Unit {
	case UnitPercent:
		return json.Marshal(strconv.FormatFloat(d.Value, 'f', -1, 64) + "%")
	case UnitPx:
		return json.Marshal(strconv.FormatFloat(d.Value, 'f', -1, 64) + "px")
	default:
		return json.Marshal(d.Value)
	}
}

// Resolve converts d into pixels along a dimension of size total.
func (d Dimension) Resolve(total float64) float64 {
	switch d.Unit {
	case UnitPercent:
		return d.Value / 100 * total
	case UnitPx:
		return d.Value
	default:
		if d.Value >= 0 && d.Value <= 1 {
			return d.Value * total
		}
		return d.Value
	}
}

// resolveOr resolves d, or def pixels when d is nil.
func resolveOr(d *Dimension, total, def float64) float64 {
	if d == nil {
		return def
	}
	return d.Resolve(total)
}
