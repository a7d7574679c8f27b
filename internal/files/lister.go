// Package files lists the images of a folder.
package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	serr "imgmeta/internal/errors"
	"imgmeta/internal/log"
	"imgmeta/pkg/types"

	"github.com/gobwas/glob"
)

// DefaultExtensions is the fixed image allow-list.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp"}

var defaultLister = MustNewLister(DefaultExtensions)

// Lister enumerates the immediate entries of a folder and keeps the files
// whose lower-cased extension is on its allow-list.
type Lister struct {
	extensions []string
	matcher    glob.Glob
}

// NewLister compiles an allow-list such as {"jpg", "png"} into a matcher for
// "*.{jpg,png}". Extensions are compared case-insensitively.
func NewLister(extensions []string) (*Lister, error) {
	if len(extensions) == 0 {
		return nil, serr.NewConfigError("empty extension allow-list", "extensions", serr.InvalidConfig, nil)
	}
	exts := make([]string, len(extensions))
	for i, ext := range extensions {
		exts[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	pattern := "*.{" + strings.Join(exts, ",") + "}"
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, serr.NewConfigError("invalid extension allow-list", pattern, serr.InvalidConfig, err)
	}
	return &Lister{extensions: exts, matcher: g}, nil
}

// MustNewLister is NewLister for static allow-lists.
func MustNewLister(extensions []string) *Lister {
	l, err := NewLister(extensions)
	if err != nil {
		panic(err)
	}
	return l
}

// Extensions returns the normalized allow-list.
func (l *Lister) Extensions() []string {
	return append([]string(nil), l.extensions...)
}

// Matches reports whether name carries an allowed extension.
func (l *Lister) Matches(name string) bool {
	return l.matcher.Match(strings.ToLower(name))
}

// List returns the images directly inside folder, sorted by name. When the
// folder cannot be read it returns an empty list together with a FileError
// describing why.
func (l *Lister) List(folder string) ([]types.ImageFile, error) {
	if strings.TrimSpace(folder) == "" {
		return []types.ImageFile{}, serr.NewFileError("no folder given", folder, serr.InvalidPath, nil)
	}

	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.ImageFile{}, serr.NewFileError("folder not found", folder, serr.FileNotFound, err)
		}
		return []types.ImageFile{}, serr.NewFileError("cannot access folder", folder, serr.FileAccessDenied, err)
	}
	if !info.IsDir() {
		return []types.ImageFile{}, serr.NewFileError("not a folder", folder, serr.InvalidPath, nil)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return []types.ImageFile{}, serr.NewFileError("failed to read folder", folder, serr.FileAccessDenied, err)
	}

	images := make([]types.ImageFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !l.Matches(entry.Name()) {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		info, err := entry.Info()
		if err == nil && info.Mode()&os.ModeSymlink != 0 {
			info, err = os.Stat(path)
		}
		if err != nil {
			log.LogWithFields(log.F("path", path)).Debugf("Skipping entry: %v", err)
			continue
		}
		images = append(images, types.ImageFile{
			Name:    entry.Name(),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Plain byte order, so "A.JPG" sorts before "b.png".
	sort.Slice(images, func(i, j int) bool {
		return images[i].Name < images[j].Name
	})

	log.LogWithFields(log.F("folder", folder), log.F("count", len(images))).Debug("Listed images")
	return images, nil
}

// ListImages is List without the error: a missing or unreadable folder
// yields an empty list.
func (l *Lister) ListImages(folder string) []types.ImageFile {
	images, _ := l.List(folder)
	return images
}

// ListImages lists folder with the default allow-list.
func ListImages(folder string) []types.ImageFile {
	return defaultLister.ListImages(folder)
}
