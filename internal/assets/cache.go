/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package assets loads and caches decoded images by reference (URL, data
// URL or path). A Cache is an explicit object handed to render sessions;
// there is no package-level cache.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	applog "screenshotstudio/internal/log"
)

// Cache maps image references to decoded images. Concurrent Get calls for
// the same reference share one fetch and decode.
type Cache struct {
	fetch  Fetcher
	mu     sync.RWMutex
	images map[string]image.Image
	failed map[string]error
	group  singleflight.Group
	log    *slog.Logger
	// decodes counts completed decodes; read by tests.
	decodes int
}

// NewCache creates a cache over fetch; nil uses a DefaultFetcher rooted at ".".
func NewCache(fetch Fetcher) *Cache {
	if fetch == nil {
		fetch = NewFetcher(".", 0)
	}
	return &Cache{
		fetch:  fetch,
		images: map[string]image.Image{},
		failed: map[string]error{},
		log:    applog.WithComponent("assets"),
	}
}

// Get returns the decoded image for ref, loading it on first use. Failures
// are remembered so a broken reference is fetched only once per cache.
func (c *Cache) Get(ctx context.Context, ref string) (image.Image, error) {
	if ref == "" {
		return nil, ErrEmptyRef
	}
	c.mu.RLock()
	img, ok := c.images[ref]
	err := c.failed[ref]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}
	if err != nil {
		return nil, err
	}
	v, err, _ := c.group.Do(ref, func() (any, error) {
		data, err := c.fetch.Fetch(ctx, ref)
		if err != nil {
			return nil, c.fail(ref, fmt.Errorf("load %s: %w", short(ref), err))
		}
		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, c.fail(ref, fmt.Errorf("decode %s: %w", short(ref), err))
		}
		c.mu.Lock()
		c.images[ref] = img
		c.decodes++
		c.mu.Unlock()
		c.log.Debug("image decoded", slog.String("ref", short(ref)), slog.String("format", format),
			slog.Int("w", img.Bounds().Dx()), slog.Int("h", img.Bounds().Dy()))
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func (c *Cache) fail(ref string, err error) error {
	// cancellations are not cached so a later call can retry
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		c.mu.Lock()
		c.failed[ref] = err
		c.mu.Unlock()
	}
	c.log.Warn("image unavailable", slog.String("ref", short(ref)), slog.Any("err", err))
	return err
}

// Put stores an already decoded image under ref.
func (c *Cache) Put(ref string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[ref] = img
	delete(c.failed, ref)
}

// Peek returns a cached image without loading.
func (c *Cache) Peek(ref string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[ref]
	return img, ok
}

// Preload fetches refs concurrently and returns the first error. Empty refs
// are skipped.
func (c *Cache) Preload(ctx context.Context, refs ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		g.Go(func() error {
			_, err := c.Get(gctx, ref)
			return err
		})
	}
	return g.Wait()
}

// Len is the number of decoded images held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

func short(ref string) string {
	if len(ref) > 64 {
		return ref[:61] + "..."
	}
	return ref
}
