//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"screenshotstudio/internal/assets"
	"screenshotstudio/internal/config"
	"screenshotstudio/internal/crash"
	"screenshotstudio/internal/device"
	"screenshotstudio/internal/export"
	"screenshotstudio/internal/geom"
	"screenshotstudio/internal/legacy"
	applog "screenshotstudio/internal/log"
	"screenshotstudio/internal/textlayout"
	"screenshotstudio/internal/version"
)

// Run starts the editor window. Pass an optional document path to open immediately.
func Run(path string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.Version))

	cfg, _, err := config.Load()
	if err != nil {
		l.Warn("config load failed; using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	lib := textlayout.NewLibrary()
	if dir := strings.TrimSpace(cfg.General.FontDir); dir != "" {
		if n, err := lib.LoadDir(dir); err != nil {
			l.Warn("font dir", slog.String("dir", dir), slog.Any("err", err))
		} else {
			l.Info("fonts loaded", slog.Int("count", n))
		}
	}
	base := ""
	if path != "" {
		base = filepath.Dir(path)
	}
	composer := export.NewComposer(lib, assets.NewCache(assets.NewFetcher(base, 15*time.Second)))

	var session *Session
	if path != "" {
		session, err = OpenSession(path, composer)
		if err != nil {
			l.Error("auto-open document failed", slog.Any("err", err))
		}
	}
	if session == nil {
		session = NewSession(legacy.Config{Device: cfg.General.DefaultDevice}, composer)
		session.Path = path
	}
	session.Accent = cfg.General.DefaultAccent
	defer func() { session.Close() }()

	defer crash.Recover(crash.Scope{Dir: crashDir(session.Path), Command: "editor", Autosave: func() (string, error) { return session.Autosave() }})

	fyneApp := app.NewWithID("screenshotstudio")
	w := fyneApp.NewWindow("Screenshot Studio")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 900)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	sc := NewScreenshotCanvas(session)

	updateTitle := func() {
		name := "untitled"
		if session.Path != "" {
			name = filepath.Base(session.Path)
		}
		if session.Dirty() {
			name += " *"
		}
		w.SetTitle("Screenshot Studio: " + name)
	}
	session.OnChange = func() {
		sc.Invalidate()
		updateTitle()
	}
	session.OnSelect = func(id string) {
		if id == "" {
			status.SetText("Nothing selected")
			return
		}
		status.SetText("Selected " + id)
	}

	undoBtn := widget.NewButton("Undo", func() {
		if !session.Undo() {
			status.SetText("Nothing to undo")
		}
	})
	redoBtn := widget.NewButton("Redo", func() {
		if !session.Redo() {
			status.SetText("Nothing to redo")
		}
	})

	var ids []string
	var names []string
	for _, p := range device.All() {
		ids = append(ids, p.ID)
		names = append(names, p.Name)
	}
	deviceSelect := widget.NewSelect(names, func(name string) {
		for i, n := range names {
			if n == name && ids[i] != session.Device {
				l.Info("device changed", slog.String("device", ids[i]))
				session.SetDevice(ids[i])
				sc.Fit()
			}
		}
	})
	if p, ok := device.Lookup(session.Device); ok {
		deviceSelect.SetSelected(p.Name)
	}

	accentEntry := widget.NewEntry()
	accentEntry.SetPlaceHolder("accent (auto)")
	accentEntry.SetText(session.Accent)
	accentEntry.OnSubmitted = func(v string) {
		session.Accent = strings.TrimSpace(v)
		sc.Invalidate()
	}

	addText := func() {
		entry := widget.NewEntry()
		dialog.ShowForm("Add Text", "Add", "Cancel", []*widget.FormItem{widget.NewFormItem("Text", entry)}, func(ok bool) {
			if !ok || strings.TrimSpace(entry.Text) == "" {
				return
			}
			id, err := session.AddText(entry.Text)
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			l.Info("text added", slog.String("id", id))
		}, w)
	}
	deleteSelected := func() {
		if !session.DeleteSelected() {
			dialog.ShowInformation("Delete", "Nothing selected.", w)
		}
	}

	saveAs := func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			session.Path = uc.URI().Path()
			_ = uc.Close()
			if err := session.Save(); err != nil {
				dialog.ShowError(err, w)
				return
			}
			addRecentDocument(prefs, session.Path)
			status.SetText("Saved " + session.Path)
			updateTitle()
		}, w)
		save.SetFileName("screenshot.json")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		save.Show()
	}
	saveDoc := func() {
		if session.Path == "" {
			saveAs()
			return
		}
		if err := session.Save(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		addRecentDocument(prefs, session.Path)
		status.SetText("Saved " + session.Path)
		updateTitle()
	}

	exportPNG := func() {
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			img, rerr := session.Render(context.Background())
			if img == nil {
				dialog.ShowError(rerr, w)
				return
			}
			if _, err := export.WritePNG(outPath, img); err != nil {
				dialog.ShowError(err, w)
				return
			}
			msg := "Exported to " + outPath
			if rerr != nil {
				msg += "\n\nSome elements could not be drawn:\n" + rerr.Error()
			}
			dialog.ShowInformation("Export PNG", msg, w)
		}, w)
		save.SetFileName(strings.TrimSuffix(filepath.Base(orDefault(session.Path, "screenshot.json")), ".json") + ".png")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".png"}))
		save.Show()
	}

	openDoc := func(p string) {
		next, err := OpenSession(p, composer)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		next.Accent = session.Accent
		next.OnChange, next.OnSelect = session.OnChange, session.OnSelect
		session.Close()
		session = next
		sc.SetSession(next)
		if pr, ok := device.Lookup(session.Device); ok {
			deviceSelect.SetSelected(pr.Name)
		}
		addRecentDocument(prefs, p)
		updateTitle()
	}
	openItem := fyne.NewMenuItem("Open…", func() {
		fd := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			p := uc.URI().Path()
			_ = uc.Close()
			openDoc(p)
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		fd.Show()
	})
	var recentItems []*fyne.MenuItem
	for _, p := range loadRecentDocuments(prefs) {
		p := p
		recentItems = append(recentItems, fyne.NewMenuItem(filepath.Base(p), func() { openDoc(p) }))
	}
	recentItem := fyne.NewMenuItem("Open Recent", nil)
	recentItem.ChildMenu = fyne.NewMenu("", recentItems...)
	recentItem.Disabled = len(recentItems) == 0

	saveItem := fyne.NewMenuItem("Save", saveDoc)
	saveAsItem := fyne.NewMenuItem("Save As…", saveAs)
	exportItem := fyne.NewMenuItem("Export PNG…", exportPNG)
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}
	fileMenu := fyne.NewMenu("File", openItem, recentItem, fyne.NewMenuItemSeparator(), saveItem, saveAsItem, exportItem)

	undoItem := fyne.NewMenuItem("Undo", func() { session.Undo() })
	redoItem := fyne.NewMenuItem("Redo", func() { session.Redo() })
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}
	addTextItem := fyne.NewMenuItem("Add Text…", addText)
	deleteItem := fyne.NewMenuItem("Delete Selected", deleteSelected)
	editMenu := fyne.NewMenu("Edit", undoItem, redoItem, fyne.NewMenuItemSeparator(), addTextItem, deleteItem)

	aboutItem := fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("About", "Screenshot Studio "+version.String(), w)
	})
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, fyne.NewMenu("Help", aboutItem)))

	toolbar := container.NewHBox(
		undoBtn, redoBtn,
		widget.NewSeparator(),
		widget.NewButton("Add Text", addText),
		widget.NewButton("Delete", deleteSelected),
		widget.NewSeparator(),
		widget.NewLabel("Device"), deviceSelect,
		widget.NewLabel("Accent"), accentEntry,
		widget.NewSeparator(),
		widget.NewButton("Save", saveDoc),
		widget.NewButton("Export PNG", exportPNG),
	)
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, sc))

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if !session.Dirty() {
			w.Close()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "Discard unsaved changes?", func(discard bool) {
			if discard {
				w.Close()
			}
		}, w)
	})

	updateTitle()
	sc.Fit()
	w.ShowAndRun()
	sc.Stop()
	return nil
}

func crashDir(docPath string) string {
	if docPath != "" {
		return filepath.Dir(docPath)
	}
	return os.TempDir()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

var (
	selectionColor = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	rotateColor    = color.RGBA{R: 255, G: 170, B: 0, A: 255}
)

// ScreenshotCanvas shows the composed panel and the selection handles, and
// forwards pointer input to the session in canvas pixels.
type ScreenshotCanvas struct {
	widget.BaseWidget
	session *Session
	view    View
	fitted  bool

	img     image.Image
	renders chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	log     *slog.Logger
}

var (
	_ fyne.Draggable    = (*ScreenshotCanvas)(nil)
	_ fyne.Scrollable   = (*ScreenshotCanvas)(nil)
	_ desktop.Mouseable = (*ScreenshotCanvas)(nil)
)

func NewScreenshotCanvas(s *Session) *ScreenshotCanvas {
	ctx, cancel := context.WithCancel(context.Background())
	sc := &ScreenshotCanvas{
		session: s,
		renders: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		log:     applog.WithComponent("ui").With(slog.String("widget", "canvas")),
	}
	sc.ExtendBaseWidget(sc)
	go sc.renderLoop()
	sc.Invalidate()
	return sc
}

// Invalidate schedules a re-render. Requests that pile up during a render
// collapse into one.
func (sc *ScreenshotCanvas) Invalidate() {
	select {
	case sc.renders <- struct{}{}:
	default:
	}
	sc.Refresh()
}

// Stop ends the render goroutine.
func (sc *ScreenshotCanvas) Stop() { sc.cancel() }

func (sc *ScreenshotCanvas) renderLoop() {
	for {
		select {
		case <-sc.ctx.Done():
			return
		case <-sc.renders:
		}
		var job func(context.Context) (image.Image, error)
		done := make(chan struct{})
		fyne.Do(func() {
			job = sc.session.Snapshot()
			close(done)
		})
		select {
		case <-sc.ctx.Done():
			return
		case <-done:
		}
		img, err := job(sc.ctx)
		if err != nil {
			sc.log.Debug("render warnings", slog.Any("err", err))
		}
		if img == nil {
			continue
		}
		fyne.Do(func() {
			sc.img = img
			sc.Refresh()
		})
	}
}

// SetSession swaps the document shown and refits the view.
func (sc *ScreenshotCanvas) SetSession(s *Session) {
	sc.session = s
	sc.img = nil
	sc.Fit()
}

// Fit resets zoom so the whole panel is visible.
func (sc *ScreenshotCanvas) Fit() {
	sc.fitted = false
	sc.Invalidate()
}

func (sc *ScreenshotCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	raster := canvas.NewImageFromImage(nil)
	raster.FillMode = canvas.ImageFillStretch
	raster.ScaleMode = canvas.ImageScaleSmooth
	var edges [4]*canvas.Line
	for i := range edges {
		edges[i] = canvas.NewLine(selectionColor)
		edges[i].StrokeWidth = 1
	}
	var corners [4]*canvas.Circle
	for i := range corners {
		corners[i] = canvas.NewCircle(selectionColor)
	}
	stem := canvas.NewLine(rotateColor)
	rot := canvas.NewCircle(rotateColor)

	objs := []fyne.CanvasObject{bg, raster}
	for _, e := range edges {
		objs = append(objs, e)
	}
	for _, c := range corners {
		objs = append(objs, c)
	}
	objs = append(objs, stem, rot)
	return &screenshotCanvasRenderer{sc: sc, objects: objs, bg: bg, raster: raster, edges: edges, corners: corners, stem: stem, rot: rot}
}

func (sc *ScreenshotCanvas) MinSize() fyne.Size { return fyne.NewSize(400, 500) }

func (sc *ScreenshotCanvas) toCanvas(pos fyne.Position) geom.Pt {
	return sc.view.ToCanvas(float64(pos.X), float64(pos.Y))
}

func (sc *ScreenshotCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	mode := sc.session.PointerDown(sc.toCanvas(e.Position))
	sc.log.Debug("pointer down", slog.String("mode", mode.String()))
	sc.Refresh()
}

func (sc *ScreenshotCanvas) MouseUp(*desktop.MouseEvent) {
	if sc.session.PointerUp() {
		sc.Invalidate()
	}
}

func (sc *ScreenshotCanvas) Dragged(e *fyne.DragEvent) {
	if sc.session.PointerMove(sc.toCanvas(e.Position)) {
		sc.Refresh()
	}
}

func (sc *ScreenshotCanvas) DragEnd() {
	if sc.session.PointerUp() {
		sc.Invalidate()
	}
}

// Scrolled zooms around the pointer.
func (sc *ScreenshotCanvas) Scrolled(e *fyne.ScrollEvent) {
	factor := 1 + float64(e.Scrolled.DY)*0.01
	if factor <= 0.1 {
		factor = 0.1
	}
	sc.view = sc.view.ZoomAt(float64(e.Position.X), float64(e.Position.Y), factor)
	sc.Refresh()
}

type screenshotCanvasRenderer struct {
	sc      *ScreenshotCanvas
	objects []fyne.CanvasObject
	bg      *canvas.Rectangle
	raster  *canvas.Image
	edges   [4]*canvas.Line
	corners [4]*canvas.Circle
	stem    *canvas.Line
	rot     *canvas.Circle
}

func (r *screenshotCanvasRenderer) Destroy()                     {}
func (r *screenshotCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *screenshotCanvasRenderer) MinSize() fyne.Size           { return r.sc.MinSize() }
func (r *screenshotCanvasRenderer) Refresh()                     { r.Layout(r.sc.Size()); canvas.Refresh(r.sc) }

func (r *screenshotCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	sc := r.sc
	cw, ch := sc.session.Canvas()
	if !sc.fitted && size.Width > 0 && size.Height > 0 {
		sc.view = FitView(cw, ch, float64(size.Width), float64(size.Height), 24)
		sc.fitted = true
	}
	x, y := sc.view.ToScreen(geom.Pt{})
	if sc.img != r.raster.Image {
		r.raster.Image = sc.img
		r.raster.Refresh()
	}
	r.raster.Move(fyne.NewPos(float32(x), float32(y)))
	r.raster.Resize(fyne.NewSize(float32(float64(cw)*sc.view.Zoom), float32(float64(ch)*sc.view.Zoom)))

	h, ok := sc.session.Controller().Handles()
	if !ok {
		for _, e := range r.edges {
			e.Hide()
		}
		for _, c := range r.corners {
			c.Hide()
		}
		r.stem.Hide()
		r.rot.Hide()
		return
	}
	screen := func(p geom.Pt) fyne.Position {
		sx, sy := sc.view.ToScreen(p)
		return fyne.NewPos(float32(sx), float32(sy))
	}
	for i, e := range r.edges {
		e.Position1 = screen(h.Corners[i])
		e.Position2 = screen(h.Corners[(i+1)%4])
		e.Show()
		e.Refresh()
	}
	const handle = 10
	for i, c := range r.corners {
		p := screen(h.Corners[i])
		c.Move(fyne.NewPos(p.X-handle/2, p.Y-handle/2))
		c.Resize(fyne.NewSize(handle, handle))
		if h.Resizable {
			c.Show()
		} else {
			c.Hide()
		}
	}
	topMid := h.Frame.ToCanvas(geom.Pt{X: h.Frame.Rect.X + h.Frame.Rect.W/2, Y: h.Frame.Rect.Y})
	r.stem.Position1 = screen(topMid)
	r.stem.Position2 = screen(h.Rotate)
	r.stem.Show()
	r.stem.Refresh()
	rp := screen(h.Rotate)
	r.rot.Move(fyne.NewPos(rp.X-handle/2, rp.Y-handle/2))
	r.rot.Resize(fyne.NewSize(handle, handle))
	r.rot.Show()
}

const recentPrefsKey = "recent.documents"
const recentMax = 10

func loadRecentDocuments(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func addRecentDocument(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	out := []string{abs}
	for _, s := range loadRecentDocuments(p) {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	if len(out) > recentMax {
		out = out[:recentMax]
	}
	b, err := json.Marshal(out)
	if err != nil {
		return
	}
	p.SetString(recentPrefsKey, string(b))
}
