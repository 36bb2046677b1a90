package config

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/gogpu/effectpic/internal/errkind"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.WarpSegments != 150 || cfg.MaxBodyBytes != 32<<20 || cfg.AllowRemote || cfg.LayerCache != 0 {
		t.Errorf("defaults = %+v", cfg)
	}
	if l, _ := cfg.Level(); l != slog.LevelInfo {
		t.Errorf("Level = %v, want INFO", l)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("EFFECTPIC_ADDR", "127.0.0.1:9000")
	t.Setenv("EFFECTPIC_WARP_SEGMENTS", "40")
	t.Setenv("EFFECTPIC_LOG_LEVEL", "debug")
	t.Setenv("EFFECTPIC_ALLOW_REMOTE", "true")
	t.Setenv("EFFECTPIC_LAYER_CACHE", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.WarpSegments != 40 || !cfg.AllowRemote || cfg.LayerCache != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
	if l, _ := cfg.Level(); l != slog.LevelDebug {
		t.Errorf("Level = %v, want DEBUG", l)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero segments", "EFFECTPIC_WARP_SEGMENTS", "0"},
		{"negative layer cache", "EFFECTPIC_LAYER_CACHE", "-2"},
		{"negative body limit", "EFFECTPIC_MAX_BODY_BYTES", "-1"},
		{"unknown level", "EFFECTPIC_LOG_LEVEL", "chatty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); !errors.Is(err, errkind.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}

	t.Run("not a number", func(t *testing.T) {
		t.Setenv("EFFECTPIC_WORKERS", "many")
		if _, err := Load(); err == nil {
			t.Error("Load succeeded")
		}
	})
}
