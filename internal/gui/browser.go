package gui

import (
	"fmt"
	"strings"

	"imgmeta/internal/thumbnail"
	"imgmeta/pkg/types"

	"github.com/dustin/go-humanize"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// createPathBar builds the folder entry. Enter or the search icon submits;
// the clear button only empties the field.
func (a *App) createPathBar() fyne.CanvasObject {
	a.pathEntry = widget.NewEntry()
	a.pathEntry.SetPlaceHolder("Folder path")
	a.pathEntry.OnSubmitted = a.submitPath
	a.pathEntry.ActionItem = widget.NewButtonWithIcon("", theme.SearchIcon(), func() {
		a.submitPath(a.pathEntry.Text)
	})

	a.clearButton = widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
		a.pathEntry.SetText("")
	})
	return container.NewBorder(nil, nil, nil, a.clearButton, a.pathEntry)
}

func (a *App) submitPath(path string) {
	a.state.SetFolder(strings.TrimSpace(path))
}

func (a *App) fileAt(id int) (types.ImageFile, bool) {
	a.filesMu.RLock()
	defer a.filesMu.RUnlock()
	if id < 0 || id >= len(a.files) {
		return types.ImageFile{}, false
	}
	return a.files[id], true
}

func (a *App) fileCount() int {
	a.filesMu.RLock()
	defer a.filesMu.RUnlock()
	return len(a.files)
}

func (a *App) showFiles(images []types.ImageFile) {
	a.filesMu.Lock()
	a.files = images
	a.filesMu.Unlock()

	a.fileList.UnselectAll()
	a.thumbGrid.UnselectAll()
	a.fileList.Refresh()
	a.thumbGrid.Refresh()
}

func (a *App) createFileList() fyne.CanvasObject {
	a.fileList = widget.NewList(
		a.fileCount,
		func() fyne.CanvasObject {
			name := widget.NewLabel("template.jpg")
			name.Truncation = fyne.TextTruncateEllipsis
			size := widget.NewLabel("000 kB")
			return container.NewBorder(nil, nil, widget.NewIcon(theme.FileImageIcon()), size, name)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			img, ok := a.fileAt(id)
			if !ok {
				return
			}
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(img.Name)
			size := ""
			if img.HasDetails() {
				size = humanize.Bytes(uint64(img.Size))
			}
			row.Objects[2].(*widget.Label).SetText(size)
		},
	)
	// fyne only reports a changed selection, so the row is released again
	// and clicking it once more starts a new read.
	a.fileList.OnSelected = func(id widget.ListItemID) {
		a.selectAt(id)
		a.fileList.UnselectAll()
	}
	return a.fileList
}

func (a *App) selectAt(id int) {
	if img, ok := a.fileAt(id); ok {
		a.state.SelectFile(img)
	}
}

// gridRequest decodes at thumbnails.size; the grid cell only scales it.
func (a *App) gridRequest(entry types.ImageFile) thumbnail.Request {
	return thumbnail.NewRequest(entry.Path, a.cfg.Thumbnails.Size)
}

func (a *App) createThumbGrid() fyne.CanvasObject {
	cell := float32(a.cfg.Thumbnails.GridSize)
	a.thumbGrid = widget.NewGridWrap(
		a.fileCount,
		func() fyne.CanvasObject {
			img := canvas.NewImageFromResource(theme.FileImageIcon())
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(cell, cell))
			return img
		},
		func(id widget.GridWrapItemID, obj fyne.CanvasObject) {
			entry, ok := a.fileAt(id)
			if !ok {
				return
			}
			a.thumbs.bind(obj.(*canvas.Image), a.gridRequest(entry))
		},
	)
	a.thumbGrid.OnSelected = func(id widget.GridWrapItemID) {
		a.selectAt(id)
		a.thumbGrid.UnselectAll()
	}
	return container.NewBorder(widget.NewLabel(fmt.Sprintf("Thumbnails (%dpx)", a.cfg.Thumbnails.GridSize)), nil, nil, nil, a.thumbGrid)
}
