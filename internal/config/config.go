package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the service configuration. Values come from an optional YAML
// file (CANVASS_CONFIG, default canvass.yml) with environment variables
// taking precedence.
type Config struct {
	Port            string   `yaml:"port"`
	DatabaseURL     string   `yaml:"database_url"`
	SweepInterval   string   `yaml:"sweep_interval"` // time.ParseDuration format
	AllowedOrigins  []string `yaml:"allowed_origins"`
	VisitsPerMinute int      `yaml:"visits_per_minute"`
}

const (
	defaultPort          = "5050"
	defaultSweepInterval = time.Minute
	defaultVisitsPerMin  = 30
)

// Load reads the config file if present and applies env overrides. A
// missing file is not an error; a malformed one is.
func Load() (Config, error) {
	cfg := Config{
		Port:            defaultPort,
		VisitsPerMinute: defaultVisitsPerMin,
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:5174",
		},
	}

	path := os.Getenv("CANVASS_CONFIG")
	if path == "" {
		path = "canvass.yml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		cfg.SweepInterval = v
	}
	return cfg, nil
}

// SweepEvery parses the sweep interval, falling back to the default when
// unset or unparseable.
func (c Config) SweepEvery() time.Duration {
	if c.SweepInterval == "" {
		return defaultSweepInterval
	}
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil || d <= 0 {
		return defaultSweepInterval
	}
	return d
}
