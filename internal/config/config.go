// Package config defines service configuration and its layered loader.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers an optional YAML file and ENHEALTH_* env vars on top.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output from text to JSON records.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// ModelDir is the directory holding the model artifacts.
	ModelDir string `koanf:"model_dir"`

	// Artifact file names, resolved against ModelDir unless absolute.
	DiabetesModel string `koanf:"diabetes_model"`
	LungModel     string `koanf:"lung_model"`
	CovidModel    string `koanf:"covid_model"`
	SleepModel    string `koanf:"sleep_model"`

	// CacheSize bounds the per-model inference cache; 0 disables it.
	CacheSize int `koanf:"cache_size"`

	// RateLimitRPS is the sustained request rate; 0 disables limiting.
	RateLimitRPS float64 `koanf:"rate_limit_rps"`

	// RateLimitBurst is the token bucket size.
	RateLimitBurst int `koanf:"rate_limit_burst"`

	// MaxBodyBytes caps prediction request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// Metrics settings. Labels and buckets are only settable from the YAML file.
	MetricsEnabled         bool              `koanf:"metrics_enabled"`
	MetricsNamespace       string            `koanf:"metrics_namespace"`
	MetricsPrefix          string            `koanf:"metrics_prefix"`
	MetricsLabels          map[string]string `koanf:"metrics_labels"`
	MetricsBuckets         []float64         `koanf:"metrics_buckets"`
	MetricsRefreshInterval time.Duration     `koanf:"metrics_refresh_interval"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":5000",
		ModelDir:       "models",
		DiabetesModel:  "diabetes.yaml",
		LungModel:      "lung.yaml",
		CovidModel:     "covid.yaml",
		SleepModel:     "sleep.yaml",
		CacheSize:      1024,
		RateLimitRPS:   0,
		RateLimitBurst: 20,
		MaxBodyBytes:   1 << 20,

		MetricsEnabled:         true,
		MetricsNamespace:       "enhealth",
		MetricsRefreshInterval: 10 * time.Second,
	}
}

// ModelFiles maps each condition name to its artifact file name.
func (c *Config) ModelFiles() map[string]string {
	return map[string]string{
		"diabetes": c.DiabetesModel,
		"lung":     c.LungModel,
		"covid":    c.CovidModel,
		"sleep":    c.SleepModel,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ModelDir == "":
		return fmt.Errorf("%w: model_dir must not be empty", ErrInvalidConfig)
	case c.CacheSize < 0:
		return fmt.Errorf("%w: cache_size must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%w: rate_limit_rps must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS > 0 && c.RateLimitBurst <= 0:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate limiting is enabled", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.MetricsNamespace == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	case !sort.Float64sAreSorted(c.MetricsBuckets):
		return fmt.Errorf("%w: metrics_buckets must be ascending", ErrInvalidConfig)
	}
	for name, file := range c.ModelFiles() {
		if file == "" {
			return fmt.Errorf("%w: %s_model must not be empty", ErrInvalidConfig, name)
		}
		if filepath.Ext(file) == "" {
			return fmt.Errorf("%w: %s_model %q has no file extension", ErrInvalidConfig, name, file)
		}
	}
	return nil
}
