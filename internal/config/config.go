// Package config loads the portal configuration: a TOML file, an optional
// .env file, and LISPORTAL_* environment overrides, applied in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LISPORTAL_"

// ErrInvalidConfig is returned for configurations that fail validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the portal configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Search SearchConfig `toml:"search"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP server and the element registry.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// SigningKey signs element props. Empty means a random key per process.
	SigningKey      string `toml:"signing_key"`
	MaxInstances    int    `toml:"max_instances"`
	ShutdownSeconds int    `toml:"shutdown_seconds"`
}

// SearchConfig configures the demo search backends.
type SearchConfig struct {
	PageSize int `toml:"page_size"`
}

// LogConfig configures logging. File enables a rotated JSON log next to
// the console output.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxInstances:    4096,
			ShutdownSeconds: 10,
		},
		Search: SearchConfig{
			PageSize: 10,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 7,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// LoadEnv loads .env files into the process environment. Missing files are
// skipped; variables already set are not overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads the TOML file at path (if any) over the defaults, applies the
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func Parse(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from LISPORTAL_* variables found by lookup.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ADDR":        &cfg.Server.Addr,
		"SIGNING_KEY": &cfg.Server.SigningKey,
		"LOG_LEVEL":   &cfg.Log.Level,
		"LOG_FILE":    &cfg.Log.File,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MAX_INSTANCES":    &cfg.Server.MaxInstances,
		"SHUTDOWN_SECONDS": &cfg.Server.ShutdownSeconds,
		"PAGE_SIZE":        &cfg.Search.PageSize,
	}
	for name, dst := range ints {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, EnvPrefix, name, v)
		}
		*dst = n
	}
	return nil
}

// Validate checks the configuration.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	case cfg.Server.MaxInstances < 1:
		return fmt.Errorf("%w: server.max_instances must be positive", ErrInvalidConfig)
	case cfg.Server.ShutdownSeconds < 0:
		return fmt.Errorf("%w: server.shutdown_seconds must not be negative", ErrInvalidConfig)
	case cfg.Search.PageSize < 1:
		return fmt.Errorf("%w: search.page_size must be positive", ErrInvalidConfig)
	}
	return nil
}
