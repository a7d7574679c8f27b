// Package thumbnail decodes images into small previews for the list and
// grid views.
package thumbnail

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	serr "imgmeta/internal/errors"
)

const (
	// DefaultSize is the decode box used when no size is configured.
	DefaultSize = 256

	maxInputBytes = 100 << 20
)

// Request describes one thumbnail: the image path and the box it must fit.
type Request struct {
	Path   string
	Width  int
	Height int
}

// NewRequest returns a square request, falling back to DefaultSize for
// non-positive sizes.
func NewRequest(path string, size int) Request {
	if size <= 0 {
		size = DefaultSize
	}
	return Request{Path: path, Width: size, Height: size}
}

// Key identifies the request, e.g. for caching by a view.
func (r Request) Key() string {
	return fmt.Sprintf("%s@%dx%d", r.Path, r.Width, r.Height)
}

// Generate decodes req.Path and scales it to fit the request box while
// keeping its aspect ratio. Images already smaller than the box are only
// converted, never enlarged.
func Generate(req Request) (img image.Image, err error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, serr.Newf("invalid thumbnail size %dx%d for %s", req.Width, req.Height, req.Path)
	}

	f, err := os.Open(req.Path)
	if err != nil {
		kind := serr.FileAccessDenied
		if os.IsNotExist(err) {
			kind = serr.FileNotFound
		}
		return nil, serr.NewFileError("failed to open image", req.Path, kind, err)
	}
	defer f.Close()

	// Corrupt input can panic inside the decoders.
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = serr.NewMetadataError(fmt.Sprintf("decoder panic: %v", r), req.Path, "thumbnail", serr.MetadataDecodeFailed, nil)
		}
	}()

	src, err := decode(io.LimitReader(f, maxInputBytes), filepath.Ext(req.Path))
	if err != nil {
		return nil, serr.NewMetadataError("failed to decode image", req.Path, "thumbnail", serr.UnsupportedFormat, err)
	}

	// Paletted images are converted before resizing.
	if _, ok := src.(*image.Paletted); ok {
		rgba := image.NewRGBA(src.Bounds())
		draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
		src = rgba
	}

	return resize.Thumbnail(uint(req.Width), uint(req.Height), src, resize.Lanczos3), nil
}

func decode(r io.Reader, ext string) (image.Image, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".png":
		return png.Decode(r)
	case ".gif":
		return gif.Decode(r)
	case ".bmp":
		return bmp.Decode(r)
	case ".webp":
		return webp.Decode(r)
	}
	img, _, err := image.Decode(r)
	return img, err
}
