package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netdiag.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.PingCount != 4 || cfg.MTRCount != 30 {
		t.Errorf("unexpected defaults: ping=%d mtr=%d", cfg.PingCount, cfg.MTRCount)
	}
	if cfg.PingTimeout() != 10*time.Second {
		t.Errorf("unexpected ping timeout: %v", cfg.PingTimeout())
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
targets:
  - 192.0.2.1
ping_count: 8
thresholds:
  mtr_warn_latency_ms: 150
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0] != "192.0.2.1" {
		t.Errorf("targets not overridden: %v", cfg.Targets)
	}
	if cfg.PingCount != 8 {
		t.Errorf("ping_count not overridden: %d", cfg.PingCount)
	}
	// Untouched fields keep their defaults.
	if cfg.MTRCount != 30 {
		t.Errorf("mtr_count default lost: %d", cfg.MTRCount)
	}
	thresholds := cfg.ParserThresholds()
	if thresholds.MTRWarnLatency != 150 {
		t.Errorf("threshold override lost: %v", thresholds.MTRWarnLatency)
	}
	if thresholds.PingWarnLoss != 50 {
		t.Errorf("threshold default lost: %v", thresholds.PingWarnLoss)
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	for name, content := range map[string]string{
		"zero ping count": "ping_count: 0",
		"huge mtr count":  "mtr_count: 1000",
		"bad format":      "formats: [xml]",
		"no targets":      "targets: []",
	} {
		path := writeConfig(t, content)
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NETDIAG_TARGETS", "10.0.0.1, 10.0.0.2")
	t.Setenv("NETDIAG_PING_COUNT", "6")
	t.Setenv("NETDIAG_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Targets) != 2 || cfg.Targets[1] != "10.0.0.2" {
		t.Errorf("env targets not applied: %v", cfg.Targets)
	}
	if cfg.PingCount != 6 {
		t.Errorf("env ping count not applied: %d", cfg.PingCount)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("env log level not applied: %s", cfg.LogLevel)
	}
}

func TestEnvInvalidIntIgnored(t *testing.T) {
	t.Setenv("NETDIAG_PING_COUNT", "many")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PingCount != 4 {
		t.Errorf("invalid env int should keep default, got %d", cfg.PingCount)
	}
}
