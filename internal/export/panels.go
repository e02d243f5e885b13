/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"
)

// Rendered is one finished panel. Err carries soft element failures when Image is set,
// or the reason no image exists.
type Rendered struct {
	Index int
	Name  string
	Image image.Image
	Err   error
}

// RenderFunc renders panel index of total.
type RenderFunc func(ctx context.Context, index, total int) (image.Image, error)

// RenderPanels runs fn for every panel with at most workers in flight (0 means NumCPU).
// Results come back in panel order.
func RenderPanels(ctx context.Context, total, workers int, fn RenderFunc) []Rendered {
	if total <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > total {
		workers = total
	}
	out := make([]Rendered, total)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		out[i].Index = i
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			out[i].Err = ctx.Err()
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					out[i].Err = fmt.Errorf("panel %d panicked: %v", i+1, r)
				}
			}()
			out[i].Image, out[i].Err = fn(ctx, i, total)
		}(i)
	}
	wg.Wait()
	return out
}
