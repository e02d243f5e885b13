/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package templatestore provides read-only access to a library of layout templates.
// Templates live either as *.json files in a directory, or as rows of a
// `templates` table in an embedded SQLite file or a shared Postgres database.
package templatestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"screenshotstudio/internal/config"
	"screenshotstudio/internal/template"
)

var (
	ErrNotFound      = errors.New("template not found")
	ErrUnknownDriver = errors.New("unknown template driver")
)

// Summary is one entry of a library listing.
type Summary struct {
	ID      string
	Name    string
	Version int
}

// Store is a read-only template library.
type Store interface {
	List(ctx context.Context) ([]Summary, error)
	// Get returns the parsed and schema-validated template, or ErrNotFound.
	Get(ctx context.Context, id string) (*template.Template, error)
	Close() error
}

// Open selects the backend named by cfg.Driver. The password is only used by postgres.
func Open(ctx context.Context, cfg config.TemplatesConfig, password string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "dir":
		return OpenDir(cfg.Dir)
	case "sqlite":
		return OpenSQLite(ctx, cfg.DSN)
	case "postgres", "pg":
		return OpenPostgres(ctx, cfg.DSN, cfg.User, password)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// summarize returns the listing entry for a parsed template; id is the fallback when the document has none.
func summarize(id string, t *template.Template) Summary {
	s := Summary{ID: id, Name: t.Name, Version: t.Version}
	if s.Name == "" {
		s.Name = id
	}
	return s
}
