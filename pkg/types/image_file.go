package types

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ImageFile is a listed image in the current folder. It is immutable once
// listed and must be re-listed whenever the folder changes. Size and
// ModTime are captured by the lister, so views never touch the disk.
type ImageFile struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// NewImageFile builds an entry for the file at path without details.
func NewImageFile(path string) ImageFile {
	return ImageFile{Name: filepath.Base(path), Path: path}
}

// Ext returns the lower-cased extension without the leading dot.
func (f ImageFile) Ext() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
}

// HasDetails reports whether Size and ModTime were filled in by a listing.
func (f ImageFile) HasDetails() bool {
	return !f.ModTime.IsZero()
}

// ToJSON converts the entry to a JSON string
func (f ImageFile) ToJSON() string {
	jsonBytes, _ := json.Marshal(f)
	return string(jsonBytes)
}

func (f ImageFile) String() string {
	return fmt.Sprintf("%s (%s)", f.Name, f.Path)
}
