package thumbnail

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	serr "imgmeta/internal/errors"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 90, A: 255})
		}
	}
	return img
}

func writeImage(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	switch filepath.Ext(name) {
	case ".jpg":
		require.NoError(t, jpeg.Encode(f, img, nil))
	case ".png":
		require.NoError(t, png.Encode(f, img))
	case ".bmp":
		require.NoError(t, bmp.Encode(f, img))
	case ".gif":
		pal := image.NewPaletted(img.Bounds(), palette.Plan9)
		for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
			for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
				pal.Set(x, y, img.At(x, y))
			}
		}
		require.NoError(t, gif.Encode(f, pal, nil))
	}
	return path
}

func TestNewRequest(t *testing.T) {
	r := NewRequest("/a.jpg", 64)
	assert.Equal(t, Request{Path: "/a.jpg", Width: 64, Height: 64}, r)
	assert.Equal(t, "/a.jpg@64x64", r.Key())

	r = NewRequest("/a.jpg", 0)
	assert.Equal(t, DefaultSize, r.Width)
	assert.Equal(t, DefaultSize, r.Height)
}

func TestGenerateFitsBox(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		img   image.Image
		box   int
		wantW int
		wantH int
	}{
		{name: "landscape jpeg", file: "a.jpg", img: solid(400, 200), box: 64, wantW: 64, wantH: 32},
		{name: "portrait png", file: "b.png", img: solid(100, 400), box: 60, wantW: 15, wantH: 60},
		{name: "bmp", file: "c.bmp", img: solid(128, 128), box: 64, wantW: 64, wantH: 64},
		{name: "paletted gif", file: "d.gif", img: solid(90, 90), box: 30, wantW: 30, wantH: 30},
		{name: "small stays small", file: "e.png", img: solid(20, 10), box: 256, wantW: 20, wantH: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeImage(t, tt.file, tt.img)
			thumb, err := Generate(NewRequest(path, tt.box))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, thumb.Bounds().Dx())
			assert.Equal(t, tt.wantH, thumb.Bounds().Dy())
		})
	}
}

func TestGenerateErrors(t *testing.T) {
	_, err := Generate(NewRequest(filepath.Join(t.TempDir(), "missing.jpg"), 64))
	assert.True(t, serr.IsFileNotFound(err))

	path := filepath.Join(t.TempDir(), "broken.webp")
	require.NoError(t, os.WriteFile(path, []byte("RIFF0000WEBPjunk"), 0o644))
	_, err = Generate(NewRequest(path, 64))
	require.Error(t, err)
	assert.True(t, serr.IsMetadataError(err))

	_, err = Generate(Request{Path: path, Width: 0, Height: 10})
	assert.Error(t, err)
}
