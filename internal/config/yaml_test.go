// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir()) // keep a real user config out of the search path
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Render.Mode != DefaultMode {
		t.Errorf("default mode = %q, want %q", cfg.Render.Mode, DefaultMode)
	}
	if cfg.FPS() != NormalFPS {
		t.Errorf("default fps = %g, want %d", cfg.FPS(), NormalFPS)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
render:
  mode: waveform
  rate: fast
  width: 40
  height: 10
  colors: [21, 57, 93]
playback:
  block_size: 2048
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Render.Mode != "waveform" {
		t.Errorf("mode = %q, want waveform", cfg.Render.Mode)
	}
	if cfg.FPS() != FastFPS {
		t.Errorf("fps = %g, want %d", cfg.FPS(), FastFPS)
	}
	if cfg.Render.Width != 40 || cfg.Render.Height != 10 {
		t.Errorf("size = %dx%d, want 40x10", cfg.Render.Width, cfg.Render.Height)
	}
	if len(cfg.Render.Colors) != 3 || cfg.Render.Colors[0] != 21 {
		t.Errorf("colors = %v, want [21 57 93]", cfg.Render.Colors)
	}
	if cfg.Playback.BlockSize != 2048 {
		t.Errorf("block_size = %d, want 2048", cfg.Playback.BlockSize)
	}
	// Unset keys keep defaults.
	if cfg.Analysis.FloorDb != DefaultFloorDb {
		t.Errorf("floor_db = %g, want %g", cfg.Analysis.FloorDb, DefaultFloorDb)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NOWPLAYING_MODE", "waveform")
	t.Setenv("NOWPLAYING_OUTPUT_DEVICE", "3")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Render.Mode != "waveform" {
		t.Errorf("mode = %q, want env override waveform", cfg.Render.Mode)
	}
	if cfg.Playback.OutputDevice != 3 {
		t.Errorf("output_device = %d, want env override 3", cfg.Playback.OutputDevice)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Defaults", func(c *Config) {}, ""},
		{"Numeric rate", func(c *Config) { c.Render.Rate = "24" }, ""},
		{"Bad rate word", func(c *Config) { c.Render.Rate = "warp" }, "render.rate"},
		{"Negative rate", func(c *Config) { c.Render.Rate = "-5" }, "render.rate"},
		{"Bad mode", func(c *Config) { c.Render.Mode = "oscilloscope" }, "render.mode"},
		{"Zero width", func(c *Config) { c.Render.Width = 0 }, "render.width"},
		{"Zero height", func(c *Config) { c.Render.Height = 0 }, "render.height"},
		{"Single color", func(c *Config) { c.Render.Colors = []int{160} }, "render.colors"},
		{"Color out of range", func(c *Config) { c.Render.Colors = []int{10, 300} }, "render.colors"},
		{"Two colors ok", func(c *Config) { c.Render.Colors = []int{10, 200} }, ""},
		{"Block not power of two", func(c *Config) { c.Playback.BlockSize = 1000 }, "playback.block_size"},
		{"Block too large", func(c *Config) { c.Playback.BlockSize = 16384 }, "playback.block_size"},
		{"Sample rate too low", func(c *Config) { c.Playback.SampleRate = 4000 }, "playback.sample_rate"},
		{"Native sample rate ok", func(c *Config) { c.Playback.SampleRate = 0 }, ""},
		{"Bad device", func(c *Config) { c.Playback.OutputDevice = -2 }, "playback.output_device"},
		{"Zero window", func(c *Config) { c.Analysis.WindowSeconds = 0 }, "analysis.window_seconds"},
		{"Positive floor", func(c *Config) { c.Analysis.FloorDb = 3 }, "analysis.floor_db"},
		{"Zero fmin", func(c *Config) { c.Analysis.FMin = 0 }, "analysis.fmin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveRate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		rate    string
		fps     float64
		wantErr bool
	}{
		{"slow", SlowFPS, false},
		{"normal", NormalFPS, false},
		{"fast", FastFPS, false},
		{"120", 120, false},
		{"29.97", 29.97, false},
		{"0", 0, true},
		{"", 0, true},
		{"quick", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			fps, err := resolveRate(tt.rate)
			if tt.wantErr {
				if err == nil {
					t.Errorf("resolveRate(%q) expected error, got %g", tt.rate, fps)
				}
				return
			}
			if err != nil {
				t.Errorf("resolveRate(%q) error = %v", tt.rate, err)
			}
			if fps != tt.fps {
				t.Errorf("resolveRate(%q) = %g, want %g", tt.rate, fps, tt.fps)
			}
		})
	}
}
