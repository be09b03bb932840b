package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loaded from YAML with env overrides.
type Config struct {
	ListenAddr string       `yaml:"listen_addr"`
	Engine     EngineConfig `yaml:"engine"`
}

type EngineConfig struct {
	// MaxDepth bounds formula nesting during parsing and evaluation.
	MaxDepth int `yaml:"max_depth"`
	// HistoryLimit caps how many edits undo can walk back.
	HistoryLimit int `yaml:"history_limit"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr: ":8080",
		Engine: EngineConfig{
			MaxDepth:     100,
			HistoryLimit: 100,
		},
	}
}

// loadConfig reads the YAML file at path over the defaults. A missing file
// keeps the defaults; a malformed one is an error. GRIDCORE_ADDR beats the
// file's listen address either way.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultConfig().ListenAddr
	}
	if cfg.Engine.MaxDepth <= 0 {
		cfg.Engine.MaxDepth = defaultConfig().Engine.MaxDepth
	}
	if cfg.Engine.HistoryLimit <= 0 {
		cfg.Engine.HistoryLimit = defaultConfig().Engine.HistoryLimit
	}
	if addr := os.Getenv("GRIDCORE_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	return cfg, nil
}
