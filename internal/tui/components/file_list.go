package components

import (
	"fmt"
	"strings"

	"imgmeta/internal/tui/styles"
	"imgmeta/pkg/types"

	"github.com/dustin/go-humanize"
)

// FileList renders the image list with a cursor. It scrolls to keep the
// cursor visible within height rows.
type FileList struct {
	files      []types.ImageFile
	cursor     int
	offset     int
	height     int
	currentDir string
	active     string
}

func NewFileList() *FileList {
	return &FileList{height: 10}
}

// SetFiles replaces the list. The cursor is kept on the same name when it
// is still present.
func (fl *FileList) SetFiles(files []types.ImageFile) {
	var current string
	if f := fl.GetCurrentFile(); f != nil {
		current = f.Name
	}
	fl.files = files
	fl.cursor = 0
	for i, f := range files {
		if f.Name == current {
			fl.cursor = i
			break
		}
	}
	fl.clampOffset()
}

func (fl *FileList) SetCurrentDir(dir string) {
	fl.currentDir = dir
}

// SetActive marks the path of the file shown in the inspector.
func (fl *FileList) SetActive(path string) {
	fl.active = path
}

func (fl *FileList) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	fl.height = h
	fl.clampOffset()
}

func (fl *FileList) View() string {
	var s strings.Builder

	if len(fl.files) == 0 {
		s.WriteString(styles.Theme.Details.Render("No images found"))
		return s.String()
	}

	end := fl.offset + fl.height
	if end > len(fl.files) {
		end = len(fl.files)
	}
	for i := fl.offset; i < end; i++ {
		file := fl.files[i]
		style := styles.Theme.Unselected
		if file.Path == fl.active {
			style = styles.Theme.Selected
		}

		cursor := " "
		name := style.Render(file.Name)
		if i == fl.cursor {
			cursor = ">"
			name = styles.Theme.Cursor.Render(file.Name)
		}

		details := ""
		if file.HasDetails() {
			details = fmt.Sprintf(" %8s  %s", humanize.Bytes(uint64(file.Size)), humanize.Time(file.ModTime))
		}

		s.WriteString(fmt.Sprintf("%s %s%s\n", cursor, name, styles.Theme.Details.Render(details)))
	}
	return strings.TrimRight(s.String(), "\n")
}

func (fl *FileList) MoveCursor(delta int) {
	newPos := fl.cursor + delta
	if newPos >= 0 && newPos < len(fl.files) {
		fl.cursor = newPos
		fl.clampOffset()
	}
}

func (fl *FileList) clampOffset() {
	if fl.cursor < fl.offset {
		fl.offset = fl.cursor
	}
	if fl.cursor >= fl.offset+fl.height {
		fl.offset = fl.cursor - fl.height + 1
	}
	if fl.offset < 0 {
		fl.offset = 0
	}
}

func (fl *FileList) GetCursor() int {
	return fl.cursor
}

func (fl *FileList) Files() []types.ImageFile {
	return fl.files
}

func (fl *FileList) CurrentDir() string {
	return fl.currentDir
}

func (fl *FileList) GetCurrentFile() *types.ImageFile {
	if fl.cursor >= 0 && fl.cursor < len(fl.files) {
		return &fl.files[fl.cursor]
	}
	return nil
}
