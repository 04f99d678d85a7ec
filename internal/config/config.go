package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"hexflow/internal/health"
	"hexflow/internal/layout"
)

// Config holds hexflow configuration.
type Config struct {
	Canvas  CanvasConfig  `toml:"canvas"`
	Storage StorageConfig `toml:"storage"`
	Health  HealthConfig  `toml:"health"`
	Metrics MetricsConfig `toml:"metrics"`
}

// CanvasConfig controls the point layout and edge drawing.
type CanvasConfig struct {
	PointCount int     `toml:"point_count"`
	Curvature  float64 `toml:"curvature"`
	Seed       int64   `toml:"seed"`
}

// StorageConfig locates the graph database.
type StorageConfig struct {
	Path string `toml:"path"`
}

// HealthConfig is the heartbeat policy.
type HealthConfig struct {
	IntervalSeconds int    `toml:"interval_seconds"`
	MaxAttempts     int    `toml:"max_attempts"`
	BackoffMS       int    `toml:"backoff_ms"`
	TimeoutMS       int    `toml:"timeout_ms"`
	WarnLatencyMS   int    `toml:"warn_latency_ms"`
	HistorySize     int    `toml:"history_size"`
	History         string `toml:"history"` // "memory" or "redis"
	RedisAddr       string `toml:"redis_addr"`
}

// MetricsConfig exposes Prometheus metrics when Addr is set.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Canvas:  CanvasConfig{PointCount: layout.DefaultPointCount, Curvature: 0.2},
		Storage: StorageConfig{Path: "hexflow.db"},
		Health: HealthConfig{
			IntervalSeconds: 30,
			MaxAttempts:     3,
			BackoffMS:       200,
			TimeoutMS:       2000,
			WarnLatencyMS:   500,
			HistorySize:     health.DefaultHistorySize,
			History:         "memory",
			RedisAddr:       "localhost:6379",
		},
	}
}

// ConfigDir returns the hexflow config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "hexflow")
}

// DefaultPath is the config file used when no path is given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path, or DefaultPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	return cfg, nil
}

// Save writes the config to path, or DefaultPath when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c *Config) Validate() error {
	if c.Canvas.PointCount < 1 {
		return fmt.Errorf("canvas.point_count must be at least 1, got %d", c.Canvas.PointCount)
	}
	if c.Health.IntervalSeconds < 1 {
		return fmt.Errorf("health.interval_seconds must be at least 1, got %d", c.Health.IntervalSeconds)
	}
	switch c.Health.History {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("health.history must be memory or redis, got %q", c.Health.History)
	}
	return nil
}

// Layout returns the connection point layout.
func (c *Config) Layout() layout.Layout {
	return layout.Layout{Size: layout.NodeSize, Count: c.Canvas.PointCount}
}

// HealthSettings converts the heartbeat section for the monitor.
func (c *Config) HealthSettings() health.Settings {
	s := health.DefaultSettings()
	h := c.Health
	s.Interval = time.Duration(h.IntervalSeconds) * time.Second
	if h.MaxAttempts > 0 {
		s.MaxAttempts = h.MaxAttempts
	}
	if h.BackoffMS > 0 {
		s.Backoff.Base = time.Duration(h.BackoffMS) * time.Millisecond
	}
	if h.TimeoutMS > 0 {
		s.Timeout = time.Duration(h.TimeoutMS) * time.Millisecond
	}
	s.WarnLatency = time.Duration(h.WarnLatencyMS) * time.Millisecond
	return s
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
