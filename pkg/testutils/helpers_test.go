package testutils

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteImage(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.PNG", "c.gif"} {
		path := WriteImage(t, dir, name, 12, 7)
		f, err := os.Open(path)
		require.NoError(t, err)
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, 12, cfg.Width)
		assert.Equal(t, 7, cfg.Height)
	}
}

func TestCreateTestFilesWithContent(t *testing.T) {
	dir := t.TempDir()
	CreateTestFilesWithContent(t, dir, map[string]string{"notes.txt": "x"})
	data, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "ok done", StripANSI("\x1b[32mok\x1b[0m done"))
}
