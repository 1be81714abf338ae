// Package config loads the ratio.yaml settings file used by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "ratio.yaml"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds CLI settings.
type Config struct {
	// Data is the game data file (.yaml or .cue).
	Data string `yaml:"data"`
	// Database is the SQLite file holding saved states.
	Database string `yaml:"database"`
	Format   string `yaml:"format"`
	// Digits is the number of decimal places in text output.
	Digits int `yaml:"digits"`
	// Fraction renders exact fractions instead of decimals.
	Fraction bool `yaml:"fraction"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Data:     "gamedata.yaml",
		Database: "ratio.db",
		Format:   FormatText,
		Digits:   3,
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Relative data and database paths are resolved against the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Data = resolve(dir, cfg.Data)
	cfg.Database = resolve(dir, cfg.Database)
	return cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate checks field ranges.
func (c Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("format %q: must be %q or %q", c.Format, FormatText, FormatJSON)
	}
	if c.Digits < 0 || c.Digits > 20 {
		return fmt.Errorf("digits %d: must be between 0 and 20", c.Digits)
	}
	return nil
}
