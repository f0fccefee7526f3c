// Package config loads user settings from ~/.infinity.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"infinity/internal/geom"
	"infinity/internal/history"
	"infinity/internal/model"
)

const FileName = ".infinity.yaml"

// Color is stored as [r, g, b, a].
type Color [4]uint8

func (c Color) Geom() geom.Color { return geom.Color{R: c[0], G: c[1], B: c[2], A: c[3]} }

func fromGeom(c geom.Color) Color { return Color{c.R, c.G, c.B, c.A} }

type Config struct {
	SaveDirectory   string `yaml:"save_directory"`
	ProjectRoot     string `yaml:"project_root"`
	UndoLimit       int    `yaml:"undo_limit" validate:"min=1,max=10000"`
	LogLevel        string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile         string `yaml:"log_file"`
	MarkerColor     Color  `yaml:"marker_color"`
	ConnectionColor Color  `yaml:"connection_color"`
	WatchProject    bool   `yaml:"watch_project"`
	Confirmations   bool   `yaml:"confirmations"`
}

func Default() *Config {
	return &Config{
		UndoLimit:       history.DefaultLimit,
		LogLevel:        "info",
		MarkerColor:     fromGeom(model.DefaultMarkerColor),
		ConnectionColor: fromGeom(model.DefaultConnectionColor),
		WatchProject:    true,
		Confirmations:   true,
	}
}

// DefaultPath is ~/.infinity.yaml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}

// Load reads path over the defaults. A missing file is not an error. When the
// file is unreadable or invalid the defaults are returned alongside the error.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return Default(), fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) expandPaths() {
	c.SaveDirectory = expand(c.SaveDirectory)
	c.ProjectRoot = expand(c.ProjectRoot)
	c.LogFile = expand(c.LogFile)
}

func expand(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return path
}

// SavePath places a bare file name in the save directory, creating it.
// Paths with a directory component are returned unchanged.
func (c *Config) SavePath(name string) (string, error) {
	if c.SaveDirectory == "" || filepath.Base(name) != name {
		return name, nil
	}
	if err := os.MkdirAll(c.SaveDirectory, 0o755); err != nil {
		return "", fmt.Errorf("create save directory %s: %w", c.SaveDirectory, err)
	}
	return filepath.Join(c.SaveDirectory, name), nil
}

// LogPath is where the file logger writes.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(os.TempDir(), "infinity.log")
}
