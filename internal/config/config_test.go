package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"imgmeta/internal/config"
	serr "imgmeta/internal/errors"
	"imgmeta/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary config file
func createTestFile(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), pattern)
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

const (
	validYAML = `
folder:
  initial: "/home/test/Pictures/sample_images"
  watch: false
listing:
  extensions: [".JPG", "png"]
thumbnails:
  size: 128
rewrite:
  suffix: "_edited"
  existing: "overwrite"
  on_select: true
  about: "DJI Meta Data"
  backend: "exiftool"
  fields:
    - name: "tiff:Make"
      value: "Hasselblad"
    - name: "drone-dji:SelfData"
      value: "HELLO WORLD"
log:
  debug: true
  json: true
`
	validTOML = `
[folder]
initial = "/srv/photos"

[rewrite]
existing = "fail"
fields = [{ name = "dc:format", value = "image/jpeg" }]
`
	invalidSyntaxYAML = `
folder:
  initial: "/path/to/text
  watch: yes
`
	invalidPolicyYAML = `
rewrite:
  existing: "replace"
`
	invalidFieldYAML = `
rewrite:
  fields:
    - name: "Make"
      value: "x"
`
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("load valid yaml", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestFile(t, "config-*.yaml", validYAML))
		require.NoError(t, err)

		assert.Equal(t, "/home/test/Pictures/sample_images", cfg.Folder.Initial)
		assert.False(t, cfg.Folder.Watch)
		assert.Equal(t, []string{"jpg", "png"}, cfg.Listing.Extensions)
		assert.Equal(t, 128, cfg.Thumbnails.Size)
		assert.Equal(t, 64, cfg.Thumbnails.GridSize, "unset keys keep their defaults")
		assert.Equal(t, "_edited", cfg.Rewrite.Suffix)
		assert.Equal(t, types.ExistingOverwrite, cfg.ExistingPolicy())
		assert.True(t, cfg.Rewrite.OnSelect)
		assert.Equal(t, "exiftool", cfg.Rewrite.Backend)
		assert.True(t, cfg.Log.Debug)
		assert.True(t, cfg.Log.JSON)

		update, err := cfg.XMPUpdate()
		require.NoError(t, err)
		assert.Equal(t, "DJI Meta Data", update.About)
		assert.Equal(t, []types.XMPField{
			{Prefix: "tiff", Name: "Make", Value: "Hasselblad"},
			{Prefix: "drone-dji", Name: "SelfData", Value: "HELLO WORLD"},
		}, update.Fields)
	})

	t.Run("load valid toml", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(createTestFile(t, "config-*.toml", validTOML))
		require.NoError(t, err)

		assert.Equal(t, "/srv/photos", cfg.Folder.Initial)
		assert.True(t, cfg.Folder.Watch)
		assert.Equal(t, types.ExistingFail, cfg.ExistingPolicy())
		require.Len(t, cfg.Rewrite.Fields, 1)
		assert.Equal(t, "dc:format", cfg.Rewrite.Fields[0].Name)
	})

	t.Run("load non-existent file", func(t *testing.T) {
		cfg, err := config.LoadConfigFile(filepath.Join(t.TempDir(), "does_not_exist.yaml"))
		require.NoError(t, err, "Loading non-existent file should return default config, not an error")

		defaults := config.New()
		assert.Equal(t, defaults, cfg)
		assert.Equal(t, config.DefaultExtensions, cfg.Listing.Extensions)
		assert.Equal(t, 256, cfg.Thumbnails.Size)
		assert.Equal(t, "_modified", cfg.Rewrite.Suffix)
		assert.Equal(t, "native", cfg.Rewrite.Backend)
		assert.Equal(t, types.ExistingReuse, cfg.ExistingPolicy())
		assert.NotEmpty(t, cfg.Folder.Initial)
	})

	t.Run("load file with invalid YAML syntax", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestFile(t, "config-*.yaml", invalidSyntaxYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error parsing config file")
	})

	t.Run("load file with invalid policy", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestFile(t, "config-*.yaml", invalidPolicyYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "rewrite.existing")
		assert.True(t, serr.IsInvalidConfig(err))
	})

	t.Run("load file with invalid field name", func(t *testing.T) {
		_, err := config.LoadConfigFile(createTestFile(t, "config-*.yaml", invalidFieldYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rewrite.fields")
	})
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *config.Config) {}},
		{name: "no extensions", mutate: func(c *config.Config) { c.Listing.Extensions = nil }, wantErr: "listing.extensions"},
		{name: "glob in extension", mutate: func(c *config.Config) { c.Listing.Extensions = []string{"jp*"} }, wantErr: "listing.extensions"},
		{name: "zero thumbnail", mutate: func(c *config.Config) { c.Thumbnails.Size = 0 }, wantErr: "thumbnails.size"},
		{name: "zero grid", mutate: func(c *config.Config) { c.Thumbnails.GridSize = 0 }, wantErr: "thumbnails.grid_size"},
		{name: "negative debounce", mutate: func(c *config.Config) { c.Folder.DebounceMS = -1 }, wantErr: "folder.debounce_ms"},
		{name: "empty suffix", mutate: func(c *config.Config) { c.Rewrite.Suffix = " " }, wantErr: "rewrite.suffix"},
		{name: "suffix with separator", mutate: func(c *config.Config) { c.Rewrite.Suffix = "/x" }, wantErr: "rewrite.suffix"},
		{name: "bad policy", mutate: func(c *config.Config) { c.Rewrite.Existing = "" }, wantErr: "rewrite.existing"},
		{name: "exiftool backend", mutate: func(c *config.Config) { c.Rewrite.Backend = "exiftool" }},
		{name: "unknown backend", mutate: func(c *config.Config) { c.Rewrite.Backend = "imagemagick" }, wantErr: "rewrite.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	var nilCfg *config.Config
	assert.Error(t, nilCfg.Validate())
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.NewTestConfig("/srv/photos")
	cfg.Rewrite.Fields = []config.FieldSetting{{Name: "tiff:Model", Value: "L2D-20c"}}

	require.NoError(t, config.SaveConfig(cfg, path))

	loaded, err := config.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDebounce(t *testing.T) {
	cfg := config.New()
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
}
