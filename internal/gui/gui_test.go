package gui

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"imgmeta/internal/config"
	"imgmeta/internal/state"
	"imgmeta/internal/thumbnail"
	"imgmeta/pkg/testutils"
	"imgmeta/pkg/types"

	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestApp creates an App on the fyne test driver over a folder with
// two images.
func setupTestApp(t *testing.T) (*App, *state.Container, string) {
	t.Helper()
	dir := t.TempDir()
	testutils.WriteImage(t, dir, "b.jpg", 32, 16)
	testutils.WriteImage(t, dir, "a.jpg", 32, 16)

	cfg := config.NewTestConfig(dir)
	cfg.Rewrite.Fields = []config.FieldSetting{{Name: "tiff:Make", Value: "DJI"}}
	opts, err := state.OptionsFromConfig(cfg)
	require.NoError(t, err)
	c, err := state.New(opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	testApp := test.NewApp()
	t.Cleanup(testApp.Quit)
	a := newApp(testApp, cfg, c)
	t.Cleanup(a.mainWindow.Close)
	return a, c, dir
}

func TestNewAppInitialState(t *testing.T) {
	a, _, _ := setupTestApp(t)

	require.NotNil(t, a.GetMainWindow().Content())
	assert.Equal(t, 0, a.fileList.Length())
	assert.True(t, a.writeButton.Disabled())
	assert.Equal(t, "tiff:Make=DJI", a.fieldsEntry.Text)
}

func TestSubmitPath(t *testing.T) {
	a, c, dir := setupTestApp(t)

	a.pathEntry.SetText(dir)
	a.pathEntry.OnSubmitted(a.pathEntry.Text)

	assert.Equal(t, dir, c.Folder.Value())
	assert.Equal(t, 2, a.fileList.Length())
	assert.Equal(t, 2, a.thumbGrid.Length())
	first, ok := a.fileAt(0)
	require.True(t, ok)
	assert.Equal(t, "a.jpg", first.Name)
}

func TestSearchActionAndClear(t *testing.T) {
	a, c, dir := setupTestApp(t)

	a.pathEntry.SetText(dir)
	test.Tap(a.pathEntry.ActionItem.(*widget.Button))
	assert.Equal(t, dir, c.Folder.Value())

	test.Tap(a.clearButton)
	assert.Empty(t, a.pathEntry.Text)
	assert.Equal(t, dir, c.Folder.Value(), "clearing is local to the field")
	assert.Equal(t, 2, a.fileList.Length())
}

func TestMissingFolderShowsNotice(t *testing.T) {
	a, _, dir := setupTestApp(t)

	a.submitPath(filepath.Join(dir, "nope"))

	assert.Equal(t, 0, a.fileList.Length())
	assert.Contains(t, a.statusLabel.Text, "warning")
}

func TestSelectShowsMetadata(t *testing.T) {
	a, c, dir := setupTestApp(t)
	a.submitPath(dir)

	a.fileList.Select(0)
	c.Wait()

	require.NotNil(t, c.Selected.Value())
	assert.Equal(t, "a.jpg", c.Selected.Value().Name)
	assert.Contains(t, a.metaText.Text, "No metadata found")
	assert.Contains(t, a.metaText.Text, "image/jpeg")
	assert.False(t, a.writeButton.Disabled())
}

func TestReselectStartsNewRead(t *testing.T) {
	a, c, dir := setupTestApp(t)
	a.submitPath(dir)

	var mu sync.Mutex
	selections := 0
	cancel := c.Selected.Subscribe(func(sel *types.ImageFile) {
		if sel == nil {
			return
		}
		mu.Lock()
		selections++
		mu.Unlock()
	})
	defer cancel()

	a.fileList.Select(0)
	c.Wait()
	a.fileList.Select(0)
	c.Wait()
	a.thumbGrid.Select(0)
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, selections)
	assert.Equal(t, "a.jpg", c.Selected.Value().Name)
}

func TestGridDecodesAtThumbnailSize(t *testing.T) {
	a, _, dir := setupTestApp(t)
	a.cfg.Thumbnails.Size = 16
	a.submitPath(dir)

	entry, ok := a.fileAt(0)
	require.True(t, ok)
	req := a.gridRequest(entry)
	assert.Equal(t, 16, req.Width)
	assert.Equal(t, 16, req.Height)

	cell := a.thumbGrid.CreateItem()
	a.thumbGrid.UpdateItem(0, cell)
	assert.Equal(t, float32(a.cfg.Thumbnails.GridSize), cell.MinSize().Width)

	require.Eventually(t, func() bool {
		_, ok := a.thumbs.cached(req)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	thumb, _ := a.thumbs.cached(req)
	assert.Equal(t, 16, thumb.Bounds().Dx())
	assert.Equal(t, 8, thumb.Bounds().Dy())

	_, ok = a.thumbs.cached(thumbnail.NewRequest(entry.Path, a.cfg.Thumbnails.GridSize))
	assert.False(t, ok, "the cell size is not a decode size")
}

func TestWriteModifiedCopy(t *testing.T) {
	a, c, dir := setupTestApp(t)
	a.submitPath(dir)
	a.fileList.Select(0)
	c.Wait()

	a.fieldsEntry.SetText("tiff:Make=Hasselblad\n\ndc:title=Harbour")
	test.Tap(a.writeButton)
	c.Wait()

	assert.FileExists(t, filepath.Join(dir, "a_modified.jpg"))
	assert.Contains(t, a.statusLabel.Text, "Wrote modified copy")
	assert.Equal(t, 3, a.fileList.Length())
}

func TestWriteModifiedCopyRejectsBadFields(t *testing.T) {
	a, c, dir := setupTestApp(t)
	a.submitPath(dir)
	a.fileList.Select(0)
	c.Wait()

	a.fieldsEntry.SetText("not a field")
	test.Tap(a.writeButton)
	c.Wait()

	assert.NoFileExists(t, filepath.Join(dir, "a_modified.jpg"))
}

func TestThumbCache(t *testing.T) {
	path := testutils.WriteImage(t, t.TempDir(), "x.jpg", 32, 16)
	cache := newThumbCache()
	img := canvas.NewImageFromImage(nil)
	req := thumbnail.NewRequest(path, 8)

	cache.bind(img, req)

	require.Eventually(t, func() bool {
		_, ok := cache.cached(req)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	thumb, _ := cache.cached(req)
	assert.Equal(t, 8, thumb.Bounds().Dx())
	assert.Equal(t, 4, thumb.Bounds().Dy())
}

func TestFactoryRequiresState(t *testing.T) {
	_, err := NewFactory(config.NewTestConfig(t.TempDir()), nil).Create()
	assert.Error(t, err)

	_, err = NewFactory(nil, nil).Create()
	assert.Error(t, err)
}
