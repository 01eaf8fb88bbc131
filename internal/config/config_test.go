package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GroundGame/Canvass-Backend/internal/config"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("CANVASS_CONFIG", filepath.Join(t.TempDir(), "missing.yml"))
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SWEEP_INTERVAL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "5050" {
		t.Errorf("port = %q, want default 5050", cfg.Port)
	}
	if cfg.SweepEvery() != time.Minute {
		t.Errorf("sweep interval = %s, want default 1m", cfg.SweepEvery())
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canvass.yml")
	yml := "port: \"6000\"\nsweep_interval: 30s\nvisits_per_minute: 10\nallowed_origins:\n  - https://canvass.example.org\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CANVASS_CONFIG", path)
	t.Setenv("PORT", "7000") // env wins
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SWEEP_INTERVAL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("port = %q, want env override 7000", cfg.Port)
	}
	if cfg.SweepEvery() != 30*time.Second {
		t.Errorf("sweep interval = %s, want 30s", cfg.SweepEvery())
	}
	if cfg.VisitsPerMinute != 10 {
		t.Errorf("visits per minute = %d, want 10", cfg.VisitsPerMinute)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://canvass.example.org" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestSweepEvery_BadValueFallsBack(t *testing.T) {
	cfg := config.Config{SweepInterval: "soon"}
	if cfg.SweepEvery() != time.Minute {
		t.Errorf("bad duration should fall back to default, got %s", cfg.SweepEvery())
	}
}
