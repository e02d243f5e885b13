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
	"os"
	"path/filepath"
	"testing"

	"screenshotstudio/internal/config"
	"screenshotstudio/internal/template"
)

func doc(id, name string) string {
	return fmt.Sprintf(`{"id": %q, "name": %q, "version": 2,
  "canvas": {"devices": {"default": {"width": 400, "height": 800}}},
  "layers": [{"type": "heading", "y": 0.1}]}`, id, name)
}

func seedSQLite(t *testing.T, docs map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.sqlite")
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("schema: %v", err)
	}
	for id, body := range docs {
		if _, err := db.Exec("INSERT INTO templates(id, name, version, document) VALUES(?, ?, 2, ?)", id, "", body); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	return path
}

func TestSQLiteListAndGet(t *testing.T) {
	path := seedSQLite(t, map[string]string{
		"bold":    doc("", "Bold"),
		"minimal": doc("minimal", "Minimal"),
	})
	s, err := Open(context.Background(), config.TemplatesConfig{Driver: "sqlite", DSN: path}, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "bold" || list[1].ID != "minimal" {
		t.Fatalf("unexpected listing: %#v", list)
	}
	if list[0].Name != "bold" || list[0].Version != 2 {
		t.Fatalf("empty name should fall back to id: %#v", list[0])
	}

	tpl, err := s.Get(context.Background(), "bold")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tpl.ID != "bold" || tpl.Name != "Bold" || len(tpl.Layers) != 1 {
		t.Fatalf("unexpected template: %#v", tpl)
	}
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSQLiteInvalidDocument(t *testing.T) {
	path := seedSQLite(t, map[string]string{"broken": `{"layers": []}`})
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	if _, err := s.Get(context.Background(), "broken"); !errors.Is(err, template.ErrInvalid) {
		t.Fatalf("want schema error, got %v", err)
	}
}

func TestSQLiteMissingFileOrTable(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "absent.sqlite")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "empty.sqlite")
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE other(x INTEGER)"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()
	if _, err := OpenSQLite(context.Background(), path); err == nil {
		t.Fatalf("expected error without templates table")
	}
}

func TestDirStore(t *testing.T) {
	root := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(root, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.json", doc("", ""))
	write("a.json", doc("a", "Alpha"))
	write("bad.json", `{"canvas": 1}`)
	write("notes.txt", "ignored")

	s, err := Open(context.Background(), config.TemplatesConfig{Driver: "dir", Dir: root}, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[0].Name != "Alpha" || list[1].Name != "b" {
		t.Fatalf("unexpected listing: %#v", list)
	}
	tpl, err := s.Get(context.Background(), "b")
	if err != nil || tpl.ID != "b" {
		t.Fatalf("Get(b) = %#v, %v", tpl, err)
	}
	for _, id := range []string{"missing", "../a", ""} {
		if _, err := s.Get(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get(%q) want ErrNotFound, got %v", id, err)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.TemplatesConfig{Driver: "mongo"}, ""); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("want ErrUnknownDriver, got %v", err)
	}
	if _, err := OpenPostgres(context.Background(), "", "", ""); err == nil {
		t.Fatalf("empty dsn must fail")
	}
}
