package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	serr "imgmeta/internal/errors"
	"imgmeta/pkg/types"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultExtensions is the image allow-list used when none is configured.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp"}

// Config represents the application configuration structure.
type Config struct {
	Folder     FolderSettings    `yaml:"folder" toml:"folder"`
	Listing    ListingSettings   `yaml:"listing" toml:"listing"`
	Thumbnails ThumbnailSettings `yaml:"thumbnails" toml:"thumbnails"`
	Rewrite    RewriteSettings   `yaml:"rewrite" toml:"rewrite"`
	Log        LogSettings       `yaml:"log" toml:"log"`
}

// FolderSettings controls which folder is shown at startup and whether it is
// re-listed on filesystem changes.
type FolderSettings struct {
	Initial    string `yaml:"initial" toml:"initial"`         // Folder listed at startup
	Watch      bool   `yaml:"watch" toml:"watch"`             // Re-list on filesystem events
	DebounceMS int    `yaml:"debounce_ms" toml:"debounce_ms"` // Quiet period before re-listing
}

// ListingSettings controls the file lister.
type ListingSettings struct {
	Extensions []string `yaml:"extensions" toml:"extensions"` // Allow-list, case-insensitive, no dot
}

// ThumbnailSettings sets the decode size of thumbnails.
type ThumbnailSettings struct {
	Size     int `yaml:"size" toml:"size"`           // Decode box for previews
	GridSize int `yaml:"grid_size" toml:"grid_size"` // Cell size in the grid view
}

// RewriteSettings controls the modified-copy workflow.
type RewriteSettings struct {
	Suffix   string         `yaml:"suffix" toml:"suffix"`       // Appended to the file stem
	Existing string         `yaml:"existing" toml:"existing"`   // reuse, overwrite or fail
	OnSelect bool           `yaml:"on_select" toml:"on_select"` // Also write the copy when a file is selected
	About    string         `yaml:"about" toml:"about"`         // rdf:about of written packets
	Fields   []FieldSetting `yaml:"fields" toml:"fields"`       // Default XMP fields, in order
	Backend  string         `yaml:"backend" toml:"backend"`     // native or exiftool
}

// FieldSetting is one default XMP property, e.g. name: "tiff:Make".
type FieldSetting struct {
	Name  string `yaml:"name" toml:"name"`
	Value string `yaml:"value" toml:"value"`
}

// LogSettings controls logging.
type LogSettings struct {
	Debug bool   `yaml:"debug" toml:"debug"`
	File  string `yaml:"file" toml:"file"`
	JSON  bool   `yaml:"json" toml:"json"` // One JSON object per line
}

// DefaultPath returns ~/.config/imgmeta/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "imgmeta", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration. Files ending in
// .toml are decoded as TOML, everything else as YAML.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Decoding over the defaults keeps every key the file leaves unset.
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Folder.Initial = defaultFolder()
	cfg.Folder.Watch = true
	cfg.Folder.DebounceMS = 250

	cfg.Listing.Extensions = append([]string(nil), DefaultExtensions...)

	cfg.Thumbnails.Size = 256
	cfg.Thumbnails.GridSize = 64

	cfg.Rewrite.Suffix = "_modified"
	cfg.Rewrite.Existing = types.ExistingReuse.String()
	cfg.Rewrite.OnSelect = false
	cfg.Rewrite.Fields = []FieldSetting{}
	cfg.Rewrite.Backend = "native"

	return cfg
}

// defaultFolder is $HOME/Pictures, or the working directory when there is
// no home.
func defaultFolder() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, "Pictures")
}

func (c *Config) normalize() {
	exts := make([]string, 0, len(c.Listing.Extensions))
	for _, ext := range c.Listing.Extensions {
		exts = append(exts, strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")))
	}
	c.Listing.Extensions = exts
	c.Folder.Initial = strings.TrimSpace(c.Folder.Initial)
}

// SaveConfig saves the configuration to the specified file as YAML.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return serr.NewConfigError("nil config", "", serr.InvalidConfig, nil)
	}

	if len(c.Listing.Extensions) == 0 {
		return serr.NewConfigError("at least one extension is required", "listing.extensions", serr.InvalidConfig, nil)
	}
	for i, ext := range c.Listing.Extensions {
		if ext == "" || strings.ContainsAny(ext, `/\*?{}[],`) {
			return serr.NewConfigError(fmt.Sprintf("extension %d is invalid: %q", i, ext), "listing.extensions", serr.InvalidConfig, nil)
		}
	}

	if c.Thumbnails.Size < 1 {
		return serr.NewConfigError("thumbnail size must be >= 1", "thumbnails.size", serr.InvalidConfig, nil)
	}
	if c.Thumbnails.GridSize < 1 {
		return serr.NewConfigError("grid size must be >= 1", "thumbnails.grid_size", serr.InvalidConfig, nil)
	}
	if c.Folder.DebounceMS < 0 {
		return serr.NewConfigError("debounce must be >= 0", "folder.debounce_ms", serr.InvalidConfig, nil)
	}

	if strings.TrimSpace(c.Rewrite.Suffix) == "" || strings.ContainsAny(c.Rewrite.Suffix, `/\`) {
		return serr.NewConfigError("suffix must be a non-empty file name fragment", "rewrite.suffix", serr.InvalidConfig, nil)
	}
	if _, err := types.ParseExistingPolicy(c.Rewrite.Existing); err != nil {
		return serr.NewConfigError("invalid existing-file policy", "rewrite.existing", serr.InvalidConfig, err)
	}
	switch c.Rewrite.Backend {
	case "", "native", "exiftool":
	default:
		return serr.NewConfigError(fmt.Sprintf("unknown backend %q, want native or exiftool", c.Rewrite.Backend), "rewrite.backend", serr.InvalidConfig, nil)
	}
	for i, f := range c.Rewrite.Fields {
		if _, _, err := types.SplitQualifiedName(f.Name); err != nil {
			return serr.NewConfigError(fmt.Sprintf("field %d", i), "rewrite.fields", serr.InvalidConfig, err)
		}
	}

	return nil
}

// ExistingPolicy returns the parsed rewrite.existing value.
func (c *Config) ExistingPolicy() types.ExistingPolicy {
	p, err := types.ParseExistingPolicy(c.Rewrite.Existing)
	if err != nil {
		return types.ExistingReuse
	}
	return p
}

// XMPUpdate builds the default update from rewrite.about and rewrite.fields.
func (c *Config) XMPUpdate() (types.XMPUpdate, error) {
	update := types.XMPUpdate{About: c.Rewrite.About}
	for _, f := range c.Rewrite.Fields {
		prefix, name, err := types.SplitQualifiedName(f.Name)
		if err != nil {
			return types.XMPUpdate{}, err
		}
		update.Fields = append(update.Fields, types.XMPField{Prefix: prefix, Name: name, Value: f.Value})
	}
	return update, nil
}

// Debounce returns folder.debounce_ms as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Folder.DebounceMS) * time.Millisecond
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// NewTestConfig creates a configuration rooted at dir for tests: no watcher
// and a small debounce.
func NewTestConfig(dir string) *Config {
	cfg := defaultConfig()
	cfg.Folder.Initial = dir
	cfg.Folder.Watch = false
	cfg.Folder.DebounceMS = 10
	return cfg
}
