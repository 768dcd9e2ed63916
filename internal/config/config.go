// Package config loads the diagnostic run configuration: a YAML file merged
// over built-in defaults, with NETDIAG_* environment overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felipecaninnovaes/diagnostico-de-rede/pkg/parser"
)

type Config struct {
	// Targets tested on every run when none are given on the command line.
	Targets []string `yaml:"targets"`

	PingCount            int `yaml:"ping_count"`
	PingTimeoutSec       int `yaml:"ping_timeout"`
	TracerouteMaxHops    int `yaml:"traceroute_max_hops"`
	TracerouteTimeoutSec int `yaml:"traceroute_timeout"`
	MTRCount             int `yaml:"mtr_count"`
	MTRTimeoutSec        int `yaml:"mtr_timeout"`

	SpeedTestEnabled    bool `yaml:"speed_test_enabled"`
	SpeedTestTimeoutSec int  `yaml:"speed_test_timeout"`
	// SpeedTestTargets limits the bandwidth test to designated anchors so a
	// multi-target run does not repeat it per target.
	SpeedTestTargets []string `yaml:"speed_test_targets"`

	MaxConcurrentTests int     `yaml:"max_concurrent_tests"`
	SpawnRatePerSec    float64 `yaml:"spawn_rate_per_sec"`

	OutputDir string   `yaml:"output_directory"`
	Formats   []string `yaml:"formats"`

	HistoryPath   string `yaml:"history_path"`
	MaxStoredRuns int    `yaml:"max_stored_runs"`

	LogLevel string `yaml:"log_level"`

	// Thresholds override the stock status-classification constants. Zero
	// fields keep their defaults.
	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

// ThresholdsConfig mirrors parser.Thresholds for YAML override.
type ThresholdsConfig struct {
	PingWarnLoss       float64 `yaml:"ping_warn_loss_percent"`
	TracerouteWarnHops int     `yaml:"traceroute_warn_hops"`
	MTRFailLoss        float64 `yaml:"mtr_fail_loss_percent"`
	MTRWarnLoss        float64 `yaml:"mtr_warn_loss_percent"`
	MTRHopWarnLoss     float64 `yaml:"mtr_hop_warn_loss_percent"`
	MTRWarnLatency     float64 `yaml:"mtr_warn_latency_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		Targets:              []string{"8.8.8.8", "1.1.1.1", "google.com"},
		PingCount:            4,
		PingTimeoutSec:       10,
		TracerouteMaxHops:    30,
		TracerouteTimeoutSec: 60,
		MTRCount:             30,
		MTRTimeoutSec:        90,
		SpeedTestEnabled:     false,
		SpeedTestTimeoutSec:  120,
		SpeedTestTargets:     []string{"8.8.8.8", "1.1.1.1"},
		MaxConcurrentTests:   3,
		SpawnRatePerSec:      10,
		OutputDir:            "./reports",
		Formats:              []string{"json", "text", "csv"},
		HistoryPath:          defaultHistoryPath(),
		MaxStoredRuns:        500,
		LogLevel:             "info",
	}
}

// Timeout accessors in time.Duration form.

func (c *Config) PingTimeout() time.Duration { return time.Duration(c.PingTimeoutSec) * time.Second }

func (c *Config) TracerouteTimeout() time.Duration {
	return time.Duration(c.TracerouteTimeoutSec) * time.Second
}

func (c *Config) MTRTimeout() time.Duration { return time.Duration(c.MTRTimeoutSec) * time.Second }

func (c *Config) SpeedTestTimeout() time.Duration {
	return time.Duration(c.SpeedTestTimeoutSec) * time.Second
}

// ParserThresholds resolves the effective classification thresholds:
// defaults with any non-zero YAML overrides applied.
func (c *Config) ParserThresholds() parser.Thresholds {
	t := parser.DefaultThresholds()
	if c.Thresholds.PingWarnLoss > 0 {
		t.PingWarnLoss = c.Thresholds.PingWarnLoss
	}
	if c.Thresholds.TracerouteWarnHops > 0 {
		t.TracerouteWarnHops = c.Thresholds.TracerouteWarnHops
	}
	if c.Thresholds.MTRFailLoss > 0 {
		t.MTRFailLoss = c.Thresholds.MTRFailLoss
	}
	if c.Thresholds.MTRWarnLoss > 0 {
		t.MTRWarnLoss = c.Thresholds.MTRWarnLoss
	}
	if c.Thresholds.MTRHopWarnLoss > 0 {
		t.MTRHopWarnLoss = c.Thresholds.MTRHopWarnLoss
	}
	if c.Thresholds.MTRWarnLatency > 0 {
		t.MTRWarnLatency = c.Thresholds.MTRWarnLatency
	}
	return t
}

func defaultHistoryPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "netdiag-history.db"
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "netdiag", "history.db")
}

func defaultConfigPath() string {
	for _, p := range []string{"netdiag.yaml", "netdiag.yml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	p := filepath.Join(configDir, "netdiag", "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// Load builds the effective configuration. An explicit path must exist; an
// empty path falls back to the search locations and, failing those, to the
// defaults alone. Environment overrides always apply last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = defaultConfigPath()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if val := os.Getenv("NETDIAG_TARGETS"); val != "" {
		cfg.Targets = splitList(val)
	}
	if val := os.Getenv("NETDIAG_PING_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.PingCount = n
		} else {
			fmt.Fprintf(os.Stderr, "netdiag: warning: invalid NETDIAG_PING_COUNT value %q (must be integer), ignoring\n", val)
		}
	}
	if val := os.Getenv("NETDIAG_MTR_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.MTRCount = n
		} else {
			fmt.Fprintf(os.Stderr, "netdiag: warning: invalid NETDIAG_MTR_COUNT value %q (must be integer), ignoring\n", val)
		}
	}
	if val := os.Getenv("NETDIAG_MAX_CONCURRENT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.MaxConcurrentTests = n
		} else {
			fmt.Fprintf(os.Stderr, "netdiag: warning: invalid NETDIAG_MAX_CONCURRENT value %q (must be integer), ignoring\n", val)
		}
	}
	if val := os.Getenv("NETDIAG_OUTPUT_DIR"); val != "" {
		cfg.OutputDir = val
	}
	if val := os.Getenv("NETDIAG_FORMATS"); val != "" {
		cfg.Formats = splitList(val)
	}
	if val := os.Getenv("NETDIAG_HISTORY_PATH"); val != "" {
		cfg.HistoryPath = val
	}
	if val := os.Getenv("NETDIAG_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
}

func splitList(val string) []string {
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

var knownFormats = map[string]bool{
	"json":  true,
	"csv":   true,
	"text":  true,
	"chart": true,
}

func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("no targets configured\n\n" +
			"Add targets to the config file:\n\n" +
			"  targets:\n" +
			"    - 8.8.8.8\n" +
			"    - google.com\n\n" +
			"or pass them on the command line: netdiag run 8.8.8.8")
	}
	if c.PingCount < 1 || c.PingCount > 100 {
		return fmt.Errorf("invalid ping_count: %d (must be 1-100)", c.PingCount)
	}
	if c.MTRCount < 1 || c.MTRCount > 100 {
		return fmt.Errorf("invalid mtr_count: %d (must be 1-100)", c.MTRCount)
	}
	if c.TracerouteMaxHops < 1 || c.TracerouteMaxHops > 255 {
		return fmt.Errorf("invalid traceroute_max_hops: %d (must be 1-255)", c.TracerouteMaxHops)
	}
	if c.MaxConcurrentTests < 1 || c.MaxConcurrentTests > 64 {
		return fmt.Errorf("invalid max_concurrent_tests: %d (must be 1-64)", c.MaxConcurrentTests)
	}
	if c.SpawnRatePerSec <= 0 {
		return fmt.Errorf("invalid spawn_rate_per_sec: %v (must be positive)", c.SpawnRatePerSec)
	}
	for _, f := range c.Formats {
		if !knownFormats[strings.ToLower(f)] {
			return fmt.Errorf("unknown report format %q\n\n"+
				"Supported formats: json, csv, text, chart", f)
		}
	}
	return nil
}
