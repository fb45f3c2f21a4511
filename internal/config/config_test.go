package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("default port = %d", cfg.Port)
	}
	if cfg.Optimizer.TimeBudget != 10*time.Second {
		t.Fatalf("default budget = %s", cfg.Optimizer.TimeBudget)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "port: 9090\noptimizer:\n  time_budget: 5s\n  travel_speed_kph: 35\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PORT", "7070")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 7070 {
		t.Fatalf("env should override file: port = %d", cfg.Port)
	}
	if cfg.Optimizer.TimeBudget != 5*time.Second {
		t.Fatalf("file budget = %s", cfg.Optimizer.TimeBudget)
	}
	if cfg.Optimizer.TravelSpeedKph != 35 {
		t.Fatalf("file speed = %.0f", cfg.Optimizer.TravelSpeedKph)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "99999")
	if _, err := Load(""); err == nil {
		t.Fatalf("port 99999 accepted")
	}
}
