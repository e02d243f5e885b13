/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type memStore map[string]string

func (m memStore) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (m memStore) Set(service, key, value string) error { m[service+"/"+key] = value; return nil }
func (m memStore) Delete(service, key string) error    { delete(m, service+"/"+key); return nil }

// isolate points the config file into a temp dir and swaps the keyring.
func isolate(t *testing.T) (string, memStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, path)
	store := memStore{}
	t.Cleanup(SetTokenStore(store))
	return path, store
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	isolate(t)
	cfg, pw, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if pw != "" {
		t.Fatalf("password should be empty, got %q", pw)
	}
	if cfg.General.DefaultDevice != "iphone" || cfg.Templates.Driver != "dir" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path, store := isolate(t)
	cfg := Defaults()
	cfg.General.DefaultDevice = "ipad"
	cfg.Templates.Driver = "sqlite"
	cfg.Templates.DSN = "/tmp/templates.db"
	if err := Save(cfg, "s3cret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if store["ScreenshotStudio/templates_password"] != "s3cret" {
		t.Fatalf("password not stored in keyring: %v", store)
	}
	got, pw, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.General.DefaultDevice != "ipad" || got.Templates.Driver != "sqlite" || got.Templates.DSN != "/tmp/templates.db" {
		t.Fatalf("round trip mismatch: %#v", got)
	}
	if pw != "s3cret" {
		t.Fatalf("password = %q", pw)
	}
	if err := DeletePassword(); err != nil {
		t.Fatalf("DeletePassword: %v", err)
	}
	if _, ok := store["ScreenshotStudio/templates_password"]; ok {
		t.Fatalf("password still present after delete")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path, _ := isolate(t)
	if err := os.WriteFile(path, []byte("general: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := AppConfig{Logging: LoggingConfig{Level: "DEBUG", Format: "json", Source: true, File: "C:/tmp/sss.log"}}
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/sss.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
	if dst.General.DefaultDevice != "iphone" {
		t.Fatalf("empty src field must not clobber default: %q", dst.General.DefaultDevice)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDefaultDevice, "iphone-6.9")
	t.Setenv(EnvTemplatesDriver, "POSTGRES")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvCaptureTimeout, "1500")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.General.DefaultDevice != "iphone-6.9" || cfg.Templates.Driver != "postgres" || cfg.General.Workers != 3 || !cfg.Logging.Source {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if got := cfg.Capture.EffectiveTimeout(); got != 1500*time.Millisecond {
		t.Fatalf("EffectiveTimeout = %v", got)
	}
	if env, ok := EnvOverrideFor("templates.driver"); !ok || env != EnvTemplatesDriver {
		t.Fatalf("EnvOverrideFor = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("templates.user"); ok {
		t.Fatalf("templates.user has no env override")
	}
}

func TestEffectiveTimeoutDefault(t *testing.T) {
	if got := (CaptureConfig{}).EffectiveTimeout(); got != 30*time.Second {
		t.Fatalf("default timeout = %v", got)
	}
}
