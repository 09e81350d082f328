package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds settings loadable from a TOML file. Flags override
// whatever the file provides.
type Config struct {
	SchemaPath string `toml:"schema"`
	Normalize  *bool  `toml:"normalize"`
	LogLevel   string `toml:"log_level"`
	Print      bool   `toml:"print"`
}

func defaultConfig() Config {
	return Config{LogLevel: "warn"}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	return cfg, nil
}
