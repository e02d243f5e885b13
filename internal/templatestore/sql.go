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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/template"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// Schema is the table layout both SQL backends read from. The store never writes it;
// it is exported for provisioning tools and tests.
const Schema = `CREATE TABLE IF NOT EXISTS templates (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL DEFAULT '',
	version  INTEGER NOT NULL DEFAULT 0,
	document TEXT NOT NULL
)`

const pingTimeout = 10 * time.Second

// SQLStore reads templates from a `templates` table.
type SQLStore struct {
	db     *sql.DB
	driver string
	// bind is the positional placeholder for the single query argument.
	bind string
}

// OpenSQLite opens an existing template database file read-only.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	l := applog.WithOperation(applog.WithComponent("templatestore"), "sqlite_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)&_pragma=query_only(1)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return ready(ctx, l, &SQLStore{db: db, driver: "sqlite", bind: "?"})
}

// OpenPostgres connects to a shared library. User and password override whatever the DSN carries
// so the secret can stay in the OS keyring.
func OpenPostgres(ctx context.Context, dsn, user, password string) (*SQLStore, error) {
	l := applog.WithOperation(applog.WithComponent("templatestore"), "pg_open")
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	cc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if user != "" {
		cc.User = user
	}
	if password != "" {
		cc.Password = password
	}
	l = l.With(slog.String("host", cc.Host), slog.String("database", cc.Database))
	db := stdlib.OpenDB(*cc)
	db.SetMaxOpenConns(4)
	return ready(ctx, l, &SQLStore{db: db, driver: "postgres", bind: "$1"})
}

// ready pings the database and checks that the templates table is readable.
func ready(ctx context.Context, l *slog.Logger, s *SQLStore) (*SQLStore, error) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.db.PingContext(pctx); err != nil {
		_ = s.db.Close()
		l.Error("ping failed", slog.Any("err", err))
		return nil, fmt.Errorf("ping %s: %w", s.driver, err)
	}
	var n int
	if err := s.db.QueryRowContext(pctx, "SELECT COUNT(*) FROM templates").Scan(&n); err != nil {
		_ = s.db.Close()
		l.Error("templates table unreadable", slog.Any("err", err))
		return nil, fmt.Errorf("read templates table: %w", err)
	}
	l.Debug("template library opened", slog.Int("templates", n))
	return s, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, version FROM templates ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()
	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.Name, &sm.Version); err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		if sm.Name == "" {
			sm.Name = sm.ID
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id string) (*template.Template, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM templates WHERE id = "+s.bind, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get template %q: %w", id, err)
	}
	t, err := template.Parse([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", id, err)
	}
	if t.ID == "" {
		t.ID = id
	}
	return t, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
