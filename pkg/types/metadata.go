package types

import (
	"sort"
	"strings"
)

// MetadataSnapshot is a read-only decode of one file's metadata. It is
// created when a file is selected and never persisted.
type MetadataSnapshot struct {
	Path     string `json:"path"`
	MIMEType string `json:"mime_type,omitempty"`
	// EXIF maps a directory label (IFD0, ExifIFD, GPS, ...) to tag name -> value.
	EXIF map[string]map[string]string `json:"exif"`
	// XMP is the raw packet, empty when the file carries none.
	XMP string `json:"xmp,omitempty"`
}

// EmptySnapshot is the published value for files whose metadata could not be
// decoded.
func EmptySnapshot(path string) *MetadataSnapshot {
	return &MetadataSnapshot{
		Path: path,
		EXIF: map[string]map[string]string{},
	}
}

// HasXMP reports whether an XMP packet was found.
func (m *MetadataSnapshot) HasXMP() bool {
	return m != nil && strings.TrimSpace(m.XMP) != ""
}

// IsEmpty reports whether neither EXIF tags nor XMP were found.
func (m *MetadataSnapshot) IsEmpty() bool {
	if m == nil {
		return true
	}
	for _, tags := range m.EXIF {
		if len(tags) > 0 {
			return false
		}
	}
	return !m.HasXMP()
}

// Directories returns the EXIF directory labels in sorted order.
func (m *MetadataSnapshot) Directories() []string {
	if m == nil {
		return nil
	}
	dirs := make([]string, 0, len(m.EXIF))
	for dir := range m.EXIF {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// TagCount returns the number of EXIF tags across all directories.
func (m *MetadataSnapshot) TagCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, tags := range m.EXIF {
		n += len(tags)
	}
	return n
}

// String renders the snapshot the way the inspector panels show it.
func (m *MetadataSnapshot) String() string {
	if m.IsEmpty() {
		return "No metadata found"
	}

	var sb strings.Builder
	for _, dir := range m.Directories() {
		tags := m.EXIF[dir]
		if len(tags) == 0 {
			continue
		}
		sb.WriteString("[" + dir + "]\n")
		names := make([]string, 0, len(tags))
		for name := range tags {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sb.WriteString("  " + name + ": " + tags[name] + "\n")
		}
	}
	if m.HasXMP() {
		sb.WriteString("[XMP]\n")
		sb.WriteString(strings.TrimSpace(m.XMP))
		sb.WriteString("\n")
	}
	return sb.String()
}
