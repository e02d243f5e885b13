/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package element

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("element: unknown kind")

func (t *Text) MarshalJSON() ([]byte, error) {
	type plain Text
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*plain
	}{KindText, (*plain)(t)})
}

func (m *Mockup) MarshalJSON() ([]byte, error) {
	type plain Mockup
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*plain
	}{KindMockup, (*plain)(m)})
}

func (v *Visual) MarshalJSON() ([]byte, error) {
	type plain Visual
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		*plain
	}{KindVisual, (*plain)(v)})
}

// DecodeElement reads one element, dispatching on its "kind" field.
// Missing numeric fields get their defaults before Normalize runs.
func DecodeElement(data []byte) (Element, error) {
	var head struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("element: %w", err)
	}
	var el Element
	switch head.Kind {
	case KindText:
		el = &Text{LineHeight: DefaultLineHeight, Align: AlignCenter}
	case KindMockup:
		el = &Mockup{Scale: 1}
	case KindVisual:
		el = &Visual{Scale: 1, Opacity: 1}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, head.Kind)
	}
	if err := json.Unmarshal(data, el); err != nil {
		return nil, fmt.Errorf("element %s: %w", head.Kind, err)
	}
	el.Normalize()
	return el, nil
}

// List is an element slice with kind-aware JSON decoding.
type List []Element

func (l *List) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("element list: %w", err)
	}
	out := make(List, 0, len(raws))
	for i, raw := range raws {
		el, err := DecodeElement(raw)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, el)
	}
	*l = out
	return nil
}

// Clone deep-copies the list.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, el := range l {
		out[i] = el.Clone()
	}
	return out
}
