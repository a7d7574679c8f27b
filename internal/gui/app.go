package gui

import (
	"image/color"
	"sync"

	"imgmeta/internal/config"
	"imgmeta/internal/log"
	"imgmeta/internal/state"
	"imgmeta/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// App is the GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	cfg        *config.Config
	state      *state.Container
	thumbs     *thumbCache

	// Widgets kept for updates from state subscriptions
	pathEntry   *widget.Entry
	clearButton *widget.Button
	fileList    *widget.List
	thumbGrid   *widget.GridWrap
	metaText    *widget.Label
	fieldsEntry *widget.Entry
	writeButton *widget.Button
	statusLabel *widget.Label
	busy        *widget.ProgressBarInfinite

	// Snapshot of the published file list rendered by the list and grid
	filesMu sync.RWMutex
	files   []types.ImageFile

	unsubscribe []func()

	accentColor color.NRGBA
}

// NewApp creates a new GUI application backed by the given state container
func NewApp(cfg *config.Config, c *state.Container) *App {
	// Create app with a unique ID for preferences storage
	return newApp(app.NewWithID("io.github.imgmeta"), cfg, c)
}

func newApp(fyneApp fyne.App, cfg *config.Config, c *state.Container) *App {
	a := &App{
		fyneApp:     fyneApp,
		cfg:         cfg,
		state:       c,
		thumbs:      newThumbCache(),
		accentColor: color.NRGBA{R: 255, G: 165, B: 0, A: 255},
	}
	a.mainWindow = a.fyneApp.NewWindow("imgmeta")
	a.mainWindow.Resize(fyne.NewSize(1100, 720))
	a.mainWindow.SetContent(a.buildContent())
	a.bindState()
	a.mainWindow.SetOnClosed(a.unbind)
	return a
}

// GetMainWindow returns the main window instance
func (a *App) GetMainWindow() fyne.Window {
	return a.mainWindow
}

// Run lists the initial folder and starts the GUI event loop
func (a *App) Run() {
	a.submitPath(a.cfg.Folder.Initial)
	a.mainWindow.ShowAndRun()
}

// buildContent lays out the browser on the left and the inspector on the
// right.
func (a *App) buildContent() fyne.CanvasObject {
	title := canvas.NewText("imgmeta", a.accentColor)
	title.TextStyle.Bold = true
	title.TextSize = 18

	a.statusLabel = widget.NewLabel("")
	a.statusLabel.Truncation = fyne.TextTruncateEllipsis
	a.busy = widget.NewProgressBarInfinite()
	a.busy.Hide()

	top := container.NewBorder(nil, nil, title, nil, a.createPathBar())
	bottom := container.NewBorder(nil, nil, nil, a.busy, a.statusLabel)

	browser := container.NewVSplit(a.createFileList(), a.createThumbGrid())
	browser.SetOffset(0.45)

	split := container.NewHSplit(browser, a.createInspector())
	split.SetOffset(0.4)

	return container.NewBorder(top, bottom, nil, nil, split)
}

// bindState subscribes the widgets to the container's observables
func (a *App) bindState() {
	a.unsubscribe = append(a.unsubscribe,
		a.state.Folder.Subscribe(func(folder string) {
			if a.pathEntry.Text != folder {
				a.pathEntry.SetText(folder)
			}
		}),
		a.state.Files.Subscribe(a.showFiles),
		a.state.Metadata.Subscribe(a.showMetadata),
		a.state.Selected.Subscribe(func(sel *types.ImageFile) {
			if sel == nil {
				a.writeButton.Disable()
				return
			}
			a.writeButton.Enable()
		}),
		a.state.Notice.Subscribe(a.showNotice),
		a.state.Busy.Subscribe(func(n int) {
			if n > 0 {
				a.busy.Show()
				a.busy.Start()
				return
			}
			a.busy.Stop()
			a.busy.Hide()
		}),
	)
}

func (a *App) unbind() {
	for _, cancel := range a.unsubscribe {
		cancel()
	}
	a.unsubscribe = nil
}

func (a *App) showNotice(n types.Notice) {
	if n.IsZero() {
		a.statusLabel.SetText("")
		return
	}
	a.statusLabel.SetText(n.Level.String() + ": " + n.String())
}

// ShowError displays an error dialog
func (a *App) ShowError(message string, err error) {
	log.Errorf("%s: %v", message, err)
	dialog.ShowError(err, a.mainWindow)
}

// ShowInfo displays an information dialog
func (a *App) ShowInfo(message string) {
	dialog.ShowInformation("Info", message, a.mainWindow)
}
