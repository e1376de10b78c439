package svgconv

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a conversion session and of the CLI.
type Config struct {
	MaxOutputWidth  int    `yaml:"max_output_width" toml:"max_output_width"`
	InitialScale    int    `yaml:"initial_scale" toml:"initial_scale"`
	DefaultMaxScale int    `yaml:"default_max_scale" toml:"default_max_scale"`
	OutputDir       string `yaml:"output_dir" toml:"output_dir"`
	ErrorMode       string `yaml:"error_mode" toml:"error_mode"` // ignore, warn or strict
	LogLevel        string `yaml:"log_level" toml:"log_level"`
	Preview         bool   `yaml:"preview" toml:"preview"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.MaxOutputWidth <= 0 {
		c.MaxOutputWidth = MaxOutputWidth
	}
	if c.InitialScale <= 0 {
		c.InitialScale = DefaultScale
	}
	if c.DefaultMaxScale <= 0 {
		c.DefaultMaxScale = DefaultMaxScale
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// LoadConfigFile reads a YAML (.yaml, .yml) or TOML (.toml) config file.
// Missing fields take their default value.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("svgconv: unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("svgconv: parsing config %s: %w", path, err)
	}
	cfg.defaults()
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
