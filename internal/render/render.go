/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/fogleman/gg"

	"screenshotstudio/internal/assets"
	"screenshotstudio/internal/element"
	applog "screenshotstudio/internal/log"
)

// ElementError records why one element was skipped.
type ElementError struct {
	ID   string
	Kind element.Kind
	Err  error
}

func (e *ElementError) Error() string { return fmt.Sprintf("element %s (%s): %v", e.ID, e.Kind, e.Err) }
func (e *ElementError) Unwrap() error { return e.Err }

// RenderAll paints elements in ascending zIndex onto dc. screenshot and
// frame feed mockups; a nil screenshot makes mockups look their reference up
// in cache. Visual images come from cache. A failing element is logged and
// skipped so the rest of the composition still renders; the skipped
// elements are returned joined, for callers that want to report them.
func RenderAll(ctx context.Context, dc *gg.Context, elements []element.Element, screenshot, frame image.Image, m Metrics, cache *assets.Cache) error {
	l := applog.WithComponent("render")
	var errs []error
	for _, el := range element.PaintOrder(elements) {
		if err := paintOne(ctx, dc, el, screenshot, frame, m, cache); err != nil {
			c := el.Base()
			l.WarnContext(ctx, "element skipped", slog.String("id", c.ID), slog.String("kind", string(el.Kind())), slog.Any("err", err))
			errs = append(errs, &ElementError{ID: c.ID, Kind: el.Kind(), Err: err})
		}
	}
	return errors.Join(errs...)
}

func paintOne(ctx context.Context, dc *gg.Context, el element.Element, screenshot, frame image.Image, m Metrics, cache *assets.Cache) (err error) {
	// a panic inside drawing must not take the other elements down
	dc.Push()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		dc.Pop()
	}()
	switch e := el.(type) {
	case *element.Text:
		if e.Text == "" {
			return nil
		}
		PaintText(dc, LayoutText(TextSpecFor(e, m)))
	case *element.Mockup:
		shot := screenshot
		var loadErr error
		if shot == nil && e.ScreenshotRef != "" && cache != nil {
			shot, loadErr = cache.Get(ctx, e.ScreenshotRef)
		}
		// a missing screenshot still draws the frame with a placeholder
		PaintMockup(dc, MockupRect(e, m), shot, frame)
		return loadErr
	case *element.Visual:
		if cache == nil {
			return errors.New("no image cache")
		}
		img, err := cache.Get(ctx, e.ImageURL)
		if err != nil {
			return err
		}
		PaintVisual(dc, e, img)
	default:
		return fmt.Errorf("unhandled element type %T", el)
	}
	return nil
}
