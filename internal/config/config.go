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
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	DefaultDevice string `yaml:"default_device"`
	DefaultAccent string `yaml:"default_accent"`
	FontDir       string `yaml:"font_dir"`
	ExportDir     string `yaml:"export_dir"`
	// Workers bounds concurrent panel renders; 0 means runtime.NumCPU.
	Workers int `yaml:"workers"`
}

// TemplatesConfig selects the read-only template library.
type TemplatesConfig struct {
	Driver string `yaml:"driver"` // "dir" | "sqlite" | "postgres"
	Dir    string `yaml:"dir"`
	DSN    string `yaml:"dsn"`
	User   string `yaml:"user"`
	// Password is not stored on disk; it lives in the OS keychain.
}

type CaptureConfig struct {
	BrowserPath string `yaml:"browser_path"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	General       GeneralConfig   `yaml:"general"`
	Templates     TemplatesConfig `yaml:"templates"`
	Capture       CaptureConfig   `yaml:"capture"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DefaultDevice: "iphone", DefaultAccent: "#5B6CFF", ExportDir: "export"},
		Templates:     TemplatesConfig{Driver: "dir", Dir: "templates"},
		Capture:       CaptureConfig{TimeoutMs: 30000},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath      = "SSS_CONFIG"
	EnvDefaultDevice   = "SSS_DEVICE"
	EnvDefaultAccent   = "SSS_ACCENT"
	EnvFontDir         = "SSS_FONT_DIR"
	EnvWorkers         = "SSS_WORKERS"
	EnvTemplatesDriver = "SSS_TEMPLATES_DRIVER"
	EnvTemplatesDSN    = "SSS_TEMPLATES_DSN"
	EnvTemplatesDir    = "SSS_TEMPLATES_DIR"
	EnvBrowserPath     = "SSS_BROWSER"
	EnvCaptureTimeout  = "SSS_CAPTURE_TIMEOUT_MS"
	EnvLogLevel        = "SSS_LOG_LEVEL"
	EnvLogFormat       = "SSS_LOG_FORMAT"
	EnvLogSource       = "SSS_LOG_SOURCE"
	EnvLogFile         = "SSS_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService  = "ScreenshotStudio"
	keyringPassword = "templates_password"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// SetTokenStore swaps the secret backend and returns a restore func.
func SetTokenStore(s TokenStore) (restore func()) {
	prev := tokenStore
	tokenStore = s
	return func() { tokenStore = prev }
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "ScreenshotStudio")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "ScreenshotStudio")
	default:
		home := os.Getenv("HOME")
		if home == "" {
			return "", errors.New("cannot resolve config directory")
		}
		base = filepath.Join(home, ".config", "screenshotstudio")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// The template database password comes from the keyring and is returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", err
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	pw, _ := tokenStore.Get(keyringService, keyringPassword)
	return cfg, pw, nil
}

// Save writes the user config YAML and persists the password into the OS keyring (if non-empty).
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := tokenStore.Set(keyringService, keyringPassword, password); err != nil {
			return err
		}
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	setStr := func(d *string, s string) {
		if v := strings.TrimSpace(s); v != "" {
			*d = v
		}
	}
	setStr(&dst.General.DefaultDevice, src.General.DefaultDevice)
	setStr(&dst.General.DefaultAccent, src.General.DefaultAccent)
	setStr(&dst.General.FontDir, src.General.FontDir)
	setStr(&dst.General.ExportDir, src.General.ExportDir)
	if src.General.Workers > 0 {
		dst.General.Workers = src.General.Workers
	}
	if v := strings.TrimSpace(src.Templates.Driver); v != "" {
		dst.Templates.Driver = strings.ToLower(v)
	}
	setStr(&dst.Templates.Dir, src.Templates.Dir)
	setStr(&dst.Templates.DSN, src.Templates.DSN)
	setStr(&dst.Templates.User, src.Templates.User)
	setStr(&dst.Capture.BrowserPath, src.Capture.BrowserPath)
	if src.Capture.TimeoutMs != 0 {
		dst.Capture.TimeoutMs = src.Capture.TimeoutMs
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	setStr(&dst.Logging.File, src.Logging.File)
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	str := map[string]*string{
		EnvDefaultDevice: &cfg.General.DefaultDevice,
		EnvDefaultAccent: &cfg.General.DefaultAccent,
		EnvFontDir:       &cfg.General.FontDir,
		EnvTemplatesDSN:  &cfg.Templates.DSN,
		EnvTemplatesDir:  &cfg.Templates.Dir,
		EnvBrowserPath:   &cfg.Capture.BrowserPath,
		EnvLogFile:       &cfg.Logging.File,
	}
	for env, dst := range str {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTemplatesDriver)); v != "" {
		cfg.Templates.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.General.Workers = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvCaptureTimeout)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Capture.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
}

var envKeys = map[string]string{
	"general.default_device": EnvDefaultDevice,
	"general.default_accent": EnvDefaultAccent,
	"general.font_dir":       EnvFontDir,
	"general.workers":        EnvWorkers,
	"templates.driver":       EnvTemplatesDriver,
	"templates.dsn":          EnvTemplatesDSN,
	"templates.dir":          EnvTemplatesDir,
	"capture.browser_path":   EnvBrowserPath,
	"capture.timeout_ms":     EnvCaptureTimeout,
	"logging.level":          EnvLogLevel,
	"logging.format":         EnvLogFormat,
	"logging.source":         EnvLogSource,
	"logging.file":           EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// EffectiveTimeout returns the capture timeout, falling back to the default.
func (c CaptureConfig) EffectiveTimeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return time.Duration(Defaults().Capture.TimeoutMs) * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
