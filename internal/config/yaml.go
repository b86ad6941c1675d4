// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"nowplaying/internal/log"
)

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("nowplaying.yaml", then the user config directory).
// If no file is found, it uses built-in defaults. After loading defaults or from file,
// it applies environment variable overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{"nowplaying.yaml"}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ".config", "nowplaying", "config.yaml"))
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides layers NOWPLAYING_* environment variables over the
// current values. Overrides are reported on the debug level so they
// never print into the frame area on stdout.
func (cfg *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("NOWPLAYING_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			log.Debugf("configuration: overriding debug from env: %v", bVal)
		}
	}
	if val, ok := os.LookupEnv("NOWPLAYING_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		log.Debugf("configuration: overriding log_level from env: %s", val)
	}
	if val, ok := os.LookupEnv("NOWPLAYING_OUTPUT_DEVICE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			cfg.Playback.OutputDevice = iVal
			log.Debugf("configuration: overriding playback.output_device from env: %d", iVal)
		}
	}
	if val, ok := os.LookupEnv("NOWPLAYING_MODE"); ok {
		cfg.Render.Mode = val
		log.Debugf("configuration: overriding render.mode from env: %s", val)
	}
	if val, ok := os.LookupEnv("NOWPLAYING_RATE"); ok {
		cfg.Render.Rate = val
		log.Debugf("configuration: overriding render.rate from env: %s", val)
	}
}
