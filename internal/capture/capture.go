/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package capture takes a screenshot of a web page in a headless
// Chromium-based browser, sized to fit the screen area of a device mockup.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"screenshotstudio/internal/assets"
	"screenshotstudio/internal/device"
	applog "screenshotstudio/internal/log"
)

var (
	ErrNoBrowser  = errors.New("no Chromium-based browser found")
	ErrInvalidURL = errors.New("invalid capture url")
)

const (
	DefaultTimeout = 30 * time.Second
	// DefaultSettle is the wait after the body is visible, for web fonts and animations.
	DefaultSettle = 1500 * time.Millisecond
)

type Options struct {
	BrowserPath string
	Timeout     time.Duration
	Settle      time.Duration
}

// Viewport is the emulated browser window for a preset.
type Viewport struct {
	// Width and Height are CSS pixels.
	Width  int64
	Height int64
	Scale  float64
	// TargetW and TargetH are the pixel size delivered to the caller.
	TargetW int
	TargetH int
}

// ViewportFor sizes the capture to the mockup screen area inside its padding.
func ViewportFor(p device.Preset) Viewport {
	pad := p.Mockup.InnerPadding
	tw := int(math.Round(p.Mockup.BaseWidth - 2*pad))
	th := int(math.Round(p.Mockup.BaseHeight - 2*pad))
	scale := 3.0
	if p.Tablet() {
		scale = 2
	}
	return Viewport{
		Width:   int64(math.Round(float64(tw) / scale)),
		Height:  int64(math.Round(float64(th) / scale)),
		Scale:   scale,
		TargetW: tw,
		TargetH: th,
	}
}

// Capture loads pageURL in a headless browser emulating p and returns the screenshot
// resampled to the viewport's target size.
func Capture(ctx context.Context, pageURL string, p device.Preset, opt Options) (image.Image, error) {
	l := applog.WithOperation(applog.WithComponent("capture"), "screenshot").With(
		slog.String("url", pageURL), slog.String("device", p.ID),
	)
	if err := validURL(pageURL); err != nil {
		return nil, err
	}
	browser := opt.BrowserPath
	if browser == "" {
		var err error
		if browser, err = DetectBrowser(); err != nil {
			return nil, err
		}
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	settle := opt.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	l.Debug("using browser", slog.String("path", browser))

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(browser),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Headless,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	bctx, cancelTimeout := context.WithTimeout(bctx, timeout)
	defer cancelTimeout()

	vp := ViewportFor(p)
	var buf []byte
	err := chromedp.Run(bctx,
		chromedp.EmulateViewport(vp.Width, vp.Height, chromedp.EmulateScale(vp.Scale), chromedp.EmulateMobile),
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		l.Error("capture failed", slog.Any("err", err))
		return nil, fmt.Errorf("capture %s: %w", pageURL, err)
	}
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	l.Info("captured", slog.Int("w", vp.TargetW), slog.Int("h", vp.TargetH))
	return assets.Resample(img, vp.TargetW, vp.TargetH), nil
}

func validURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, s)
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	default:
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
}

// browserCandidates is swapped in tests.
var browserCandidates = defaultCandidates

func defaultCandidates() []string {
	switch runtime.GOOS {
	case "windows":
		var out []string
		for _, env := range []string{"PROGRAMFILES(X86)", "PROGRAMFILES", "LOCALAPPDATA"} {
			base := os.Getenv(env)
			if base == "" {
				continue
			}
			out = append(out,
				filepath.Join(base, "Microsoft", "Edge", "Application", "msedge.exe"),
				filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"),
			)
		}
		return out
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/usr/bin/microsoft-edge",
			"/snap/bin/chromium",
		}
	}
}

// DetectBrowser returns the first installed Chromium-based browser.
func DetectBrowser() (string, error) {
	for _, p := range browserCandidates() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", ErrNoBrowser
}
