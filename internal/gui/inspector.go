package gui

import (
	"fmt"
	"strings"

	serr "imgmeta/internal/errors"
	"imgmeta/pkg/types"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// createInspector builds the metadata panel and the XMP editor.
func (a *App) createInspector() fyne.CanvasObject {
	a.metaText = widget.NewLabel("Select an image to inspect its metadata")
	a.metaText.TextStyle.Monospace = true
	a.metaText.Wrapping = fyne.TextWrapWord

	a.fieldsEntry = widget.NewMultiLineEntry()
	a.fieldsEntry.SetPlaceHolder("prefix:Name=value, one per line")
	a.fieldsEntry.SetText(strings.Join(types.FormatXMPFields(a.state.DefaultUpdate().Fields), "\n"))
	a.fieldsEntry.SetMinRowsVisible(5)

	a.writeButton = widget.NewButtonWithIcon("Write modified copy", theme.DocumentSaveIcon(), a.writeModifiedCopy)
	a.writeButton.Importance = widget.HighImportance
	a.writeButton.Disable()

	editor := widget.NewCard("XMP fields", "Written to <name>"+a.cfg.Rewrite.Suffix+".<ext> next to the image",
		container.NewBorder(nil, a.writeButton, nil, nil, a.fieldsEntry))

	return container.NewBorder(nil, editor, nil, nil, container.NewVScroll(a.metaText))
}

func (a *App) showMetadata(snap *types.MetadataSnapshot) {
	if snap == nil {
		if sel := a.state.Selected.Value(); sel != nil {
			a.metaText.SetText("Reading " + sel.Name + "...")
			return
		}
		a.metaText.SetText("Select an image to inspect its metadata")
		return
	}
	header := snap.Path
	if snap.MIMEType != "" {
		header += " (" + snap.MIMEType + ")"
	}
	a.metaText.SetText(header + "\n\n" + snap.String())
}

// currentUpdate parses the XMP editor into an update.
func (a *App) currentUpdate() (types.XMPUpdate, error) {
	fields, err := types.ParseXMPFields(strings.Split(a.fieldsEntry.Text, "\n"))
	if err != nil {
		return types.XMPUpdate{}, serr.NewMetadataError(err.Error(), "", "rewrite", serr.InvalidXMPField, err)
	}
	update := a.state.DefaultUpdate()
	update.Fields = fields
	return update, nil
}

func (a *App) writeModifiedCopy() {
	sel := a.state.Selected.Value()
	if sel == nil {
		a.ShowInfo("Select an image first")
		return
	}
	update, err := a.currentUpdate()
	if err != nil {
		a.ShowError("Invalid XMP fields", err)
		return
	}
	if update.IsEmpty() {
		a.ShowError("Invalid XMP fields", fmt.Errorf("enter at least one prefix:Name=value line"))
		return
	}
	a.state.RewriteXMP(*sel, update)
}
