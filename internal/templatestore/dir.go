/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package templatestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/template"
)

// DirStore serves templates from <root>/<id>.json files.
type DirStore struct {
	root string
}

func OpenDir(root string) (*DirStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("template directory is required")
	}
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open template dir: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("open template dir: %s is not a directory", root)
	}
	return &DirStore{root: root}, nil
}

// List parses every *.json file; unreadable or invalid files are logged and left out.
func (d *DirStore) List(ctx context.Context) ([]Summary, error) {
	l := applog.WithOperation(applog.WithComponent("templatestore"), "dir_list").With(slog.String("root", d.root))
	files, err := filepath.Glob(filepath.Join(d.root, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	out := make([]Summary, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		t, err := d.load(f)
		if err != nil {
			l.WarnContext(ctx, "skipping template", slog.String("file", f), slog.Any("err", err))
			continue
		}
		out = append(out, summarize(id, t))
	}
	return out, nil
}

func (d *DirStore) Get(ctx context.Context, id string) (*template.Template, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	t, err := d.load(filepath.Join(d.root, id+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = id
	}
	return t, nil
}

func (d *DirStore) Close() error { return nil }

func (d *DirStore) load(path string) (*template.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := template.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}
