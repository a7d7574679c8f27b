package gui

import (
	"image"
	"sync"

	"imgmeta/internal/log"
	"imgmeta/internal/thumbnail"

	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
)

// thumbCache decodes grid thumbnails off the UI goroutine and remembers
// them for the lifetime of the window. Grid cells are recycled, so each
// canvas image tracks the request it currently shows.
type thumbCache struct {
	mu      sync.Mutex
	images  map[string]image.Image
	loading map[string]bool
	bound   map[*canvas.Image]string
	failed  map[string]bool
}

func newThumbCache() *thumbCache {
	return &thumbCache{
		images:  map[string]image.Image{},
		loading: map[string]bool{},
		bound:   map[*canvas.Image]string{},
		failed:  map[string]bool{},
	}
}

// bind shows req in img, decoding it in the background when needed.
func (c *thumbCache) bind(img *canvas.Image, req thumbnail.Request) {
	key := req.Key()

	c.mu.Lock()
	c.bound[img] = key
	cached, ok := c.images[key]
	failed := c.failed[key]
	start := !ok && !failed && !c.loading[key]
	if start {
		c.loading[key] = true
	}
	c.mu.Unlock()

	switch {
	case ok:
		show(img, cached)
	default:
		img.Image = nil
		img.Resource = theme.FileImageIcon()
		img.Refresh()
	}

	if start {
		go c.load(req)
	}
}

func (c *thumbCache) load(req thumbnail.Request) {
	key := req.Key()
	thumb, err := thumbnail.Generate(req)

	c.mu.Lock()
	delete(c.loading, key)
	if err != nil {
		c.failed[key] = true
		c.mu.Unlock()
		log.LogWithFields(log.F("path", req.Path), log.F("error", err)).Debug("Thumbnail failed")
		return
	}
	c.images[key] = thumb
	var targets []*canvas.Image
	for img, k := range c.bound {
		if k == key {
			targets = append(targets, img)
		}
	}
	c.mu.Unlock()

	for _, img := range targets {
		show(img, thumb)
	}
}

// cached returns the decoded thumbnail for req, if any.
func (c *thumbCache) cached(req thumbnail.Request) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.images[req.Key()]
	return img, ok
}

func show(img *canvas.Image, thumb image.Image) {
	img.Resource = nil
	img.Image = thumb
	img.Refresh()
}
