// Package config reads the environment configuration of the effectpic
// commands.
package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"github.com/gogpu/effectpic/internal/errkind"
)

// Prefix is prepended to every variable name, as in EFFECTPIC_ADDR.
const Prefix = "effectpic"

// Config holds the settings of the effectpic commands.
type Config struct {
	Addr         string `envconfig:"ADDR" default:":8080"`
	AssetRoot    string `envconfig:"ASSET_ROOT" default:"."`
	AllowRemote  bool   `envconfig:"ALLOW_REMOTE" default:"false"` // serve http(s) sources
	WarpSegments int    `envconfig:"WARP_SEGMENTS" default:"150"`
	LayerCache   int    `envconfig:"LAYER_CACHE" default:"0"` // rendered layers kept per composition, 0 for all
	Workers      int    `envconfig:"WORKERS" default:"0"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	MaxBodyBytes int64  `envconfig:"MAX_BODY_BYTES" default:"33554432"`
}

// Load reads Config from EFFECTPIC_* environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.WarpSegments < 1 {
		return fmt.Errorf("config: WARP_SEGMENTS %d: %w", c.WarpSegments, errkind.ErrInvalidArgument)
	}
	if c.LayerCache < 0 {
		return fmt.Errorf("config: LAYER_CACHE %d: %w", c.LayerCache, errkind.ErrInvalidArgument)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: MAX_BODY_BYTES %d: %w", c.MaxBodyBytes, errkind.ErrInvalidArgument)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: LOG_LEVEL %q: %w", c.LogLevel, errkind.ErrInvalidArgument)
	}
	return l, nil
}
