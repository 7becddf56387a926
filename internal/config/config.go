// Package config reads and writes the user's sheetview settings.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the settings stored in the user's config directory
type Config struct {
	View     ViewConfig     `toml:"view"`
	Editor   EditorConfig   `toml:"editor"`
	Load     LoadConfig     `toml:"load"`
	Database DatabaseConfig `toml:"database"`
}

// ViewConfig contains table geometry and filter settings
type ViewConfig struct {
	VisibleRows int `toml:"visible_rows" config:"view.visible_rows" default:"0" min:"0" max:"10000" desc:"Rows rendered per page (0 = fit terminal)"`
	RowHeight   int `toml:"row_height" config:"view.row_height" default:"1" min:"1" max:"100" desc:"Height of one row in scroll units"`
	DebounceMS  int `toml:"debounce_ms" config:"view.debounce_ms" default:"1000" min:"1" max:"60000" desc:"Quiet period before a filter applies"`
}

// EditorConfig contains cell editor settings
type EditorConfig struct {
	LongText   int    `toml:"long_text" config:"editor.long_text" default:"40" min:"1" max:"100000" desc:"String length above which text gets a multi-line editor"`
	DateLayout string `toml:"date_layout" config:"editor.date_layout" default:"1/2/2006, 3:04:05 PM" desc:"Go time layout used to show dates"`
}

// LoadConfig contains input decoding settings
type LoadConfig struct {
	Format string `toml:"format" config:"load.format" default:"auto" desc:"Input format: auto, json, jsonl, yaml, csv, tsv"`
}

// DatabaseConfig contains settings for `sheetview sql`
type DatabaseConfig struct {
	URL     string `toml:"url" config:"database.url" desc:"Default PostgreSQL connection URL"`
	Timeout int    `toml:"timeout" config:"database.timeout" default:"60" min:"1" max:"86400" desc:"Query timeout in seconds"`
}

// Default returns a new config with default values
func Default() *Config {
	return &Config{
		View: ViewConfig{
			VisibleRows: 0,
			RowHeight:   1,
			DebounceMS:  1000,
		},
		Editor: EditorConfig{
			LongText:   40,
			DateLayout: "1/2/2006, 3:04:05 PM",
		},
		Load: LoadConfig{
			Format: "auto",
		},
		Database: DatabaseConfig{
			Timeout: 60,
		},
	}
}

// Path returns the path to the config file. SHEETVIEW_CONFIG overrides
// it; otherwise it follows the XDG Base Directory spec on Linux and
// platform conventions elsewhere.
func Path() string {
	if p := os.Getenv("SHEETVIEW_CONFIG"); p != "" {
		return p
	}

	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, "Library", "Application Support", "sheetview")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "sheetview")
	default: // Linux and others - follow XDG
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "sheetview")
		} else {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config", "sheetview")
		}
	}

	return filepath.Join(configDir, "config.toml")
}

// Load reads the config file at Path.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path. A missing file yields the
// defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults for any missing values
	defaults := Default()

	if cfg.View.RowHeight == 0 {
		cfg.View.RowHeight = defaults.View.RowHeight
	}
	if cfg.View.DebounceMS == 0 {
		cfg.View.DebounceMS = defaults.View.DebounceMS
	}
	// NOTE: VisibleRows is NOT defaulted here because 0 is a valid value
	// (fit the terminal).
	if cfg.Editor.LongText == 0 {
		cfg.Editor.LongText = defaults.Editor.LongText
	}
	if cfg.Editor.DateLayout == "" {
		cfg.Editor.DateLayout = defaults.Editor.DateLayout
	}
	if cfg.Load.Format == "" {
		cfg.Load.Format = defaults.Load.Format
	}
	if cfg.Database.Timeout == 0 {
		cfg.Database.Timeout = defaults.Database.Timeout
	}

	return cfg, nil
}

// Save writes the config file to Path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config file to path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// Debounce returns the filter quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.View.DebounceMS) * time.Millisecond
}

// QueryTimeout returns the SQL query timeout.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Database.Timeout) * time.Second
}

// GetValue returns a config value by key (uses reflection)
func (c *Config) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a config value by key (uses reflection with validation)
func (c *Config) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}
