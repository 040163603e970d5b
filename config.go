package goSession

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FlushMode governs when session mutations reach Redis.
type FlushMode uint8

const (
	// FlushModeOnSave batches mutations in memory; persistence happens
	// exactly once, when the caller invokes [Store.Save].
	FlushModeOnSave FlushMode = iota
	// FlushModeImmediate saves the session synchronously on every mutating
	// operation, before control returns to the caller.
	FlushModeImmediate
)

// String returns the configuration-file name of the mode.
func (m FlushMode) String() string {
	switch m {
	case FlushModeOnSave:
		return "on_save"
	case FlushModeImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// ParseFlushMode maps a configuration-file name to a [FlushMode].
func ParseFlushMode(s string) (FlushMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on_save":
		return FlushModeOnSave, nil
	case "immediate":
		return FlushModeImmediate, nil
	default:
		return 0, fmt.Errorf("%w: unknown flush mode %q", ErrInvalidConfig, s)
	}
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig holds the runtime configuration of a [Store]. Values are fixed
// at [Builder.Build] time; they are never per-call parameters.
type StoreConfig struct {
	// TableName is the logical table segment of every Redis key. The
	// principal index lives under TableName + "_by_principal".
	TableName string
	// KeyPrefix namespaces all keys of this store instance.
	KeyPrefix string
	// DefaultMaxInactiveInterval is assigned to newly created sessions.
	// Individual sessions may override it afterwards.
	DefaultMaxInactiveInterval time.Duration
	// FlushMode is process-wide for this store and not mutable per session.
	FlushMode FlushMode
	// ScanBatchSize is the COUNT hint for sweep SCAN iterations.
	ScanBatchSize int64
}

// SweeperConfig holds the sweep schedule, expressed as a cron-like string
// ("@every 1m"); a bare duration is also accepted.
type SweeperConfig struct {
	Schedule string
}

// MetricsConfig toggles the atomic operation counters.
type MetricsConfig struct {
	Enabled bool
}

// Config aggregates all sections. Start from [DefaultConfig] and override
// fields, or load a YAML file with [LoadConfig].
type Config struct {
	Store   StoreConfig
	Sweeper SweeperConfig
	Metrics MetricsConfig
}

// DefaultConfig returns the baseline configuration: table "sessions", prefix
// "gs", 30 minute default inactivity window, on-save flushing, a sweep every
// minute, and metrics enabled.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			TableName:                  "sessions",
			KeyPrefix:                  "gs",
			DefaultMaxInactiveInterval: 30 * time.Minute,
			FlushMode:                  FlushModeOnSave,
			ScanBatchSize:              1000,
		},
		Sweeper: SweeperConfig{
			Schedule: DefaultSweepSchedule,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first configuration problem. It runs during
// [Builder.Build] so that invalid configuration fails fast at construction,
// never at runtime per call.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.TableName) == "" {
		return fmt.Errorf("%w: Store TableName must not be empty", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.Store.TableName, ": \t\n") {
		return fmt.Errorf("%w: Store TableName must not contain ':' or whitespace", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Store.KeyPrefix) == "" {
		return fmt.Errorf("%w: Store KeyPrefix must not be empty", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.Store.KeyPrefix, " \t\n") {
		return fmt.Errorf("%w: Store KeyPrefix must not contain whitespace", ErrInvalidConfig)
	}
	if c.Store.DefaultMaxInactiveInterval <= 0 {
		return fmt.Errorf("%w: Store DefaultMaxInactiveInterval must be > 0", ErrInvalidConfig)
	}
	if c.Store.FlushMode > FlushModeImmediate {
		return fmt.Errorf("%w: Store FlushMode is invalid", ErrInvalidConfig)
	}
	if c.Store.ScanBatchSize <= 0 {
		return fmt.Errorf("%w: Store ScanBatchSize must be > 0", ErrInvalidConfig)
	}
	if c.Sweeper.Schedule != "" {
		if _, err := parseSchedule(c.Sweeper.Schedule); err != nil {
			return err
		}
	}
	return nil
}

/*
====================================
FILE FORM
====================================
*/

// fileConfig is the YAML shape of Config. Durations and flush modes are
// strings here because yaml.v3 does not decode duration literals.
type fileConfig struct {
	Store struct {
		TableName                  string `yaml:"table_name"`
		KeyPrefix                  string `yaml:"key_prefix"`
		DefaultMaxInactiveInterval string `yaml:"default_max_inactive_interval"`
		FlushMode                  string `yaml:"flush_mode"`
		ScanBatchSize              int64  `yaml:"scan_batch_size"`
	} `yaml:"store"`
	Sweeper struct {
		Schedule string `yaml:"schedule"`
	} `yaml:"sweeper"`
	Metrics struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// LoadConfig reads a YAML configuration file, overlaying it on
// [DefaultConfig]. Absent fields keep their defaults. The result is
// validated before it is returned.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}

	cfg := DefaultConfig()
	if fc.Store.TableName != "" {
		cfg.Store.TableName = fc.Store.TableName
	}
	if fc.Store.KeyPrefix != "" {
		cfg.Store.KeyPrefix = fc.Store.KeyPrefix
	}
	if fc.Store.DefaultMaxInactiveInterval != "" {
		d, err := time.ParseDuration(fc.Store.DefaultMaxInactiveInterval)
		if err != nil {
			return Config{}, fmt.Errorf("%w: default_max_inactive_interval: %v", ErrInvalidConfig, err)
		}
		cfg.Store.DefaultMaxInactiveInterval = d
	}
	if fc.Store.FlushMode != "" {
		mode, err := ParseFlushMode(fc.Store.FlushMode)
		if err != nil {
			return Config{}, err
		}
		cfg.Store.FlushMode = mode
	}
	if fc.Store.ScanBatchSize != 0 {
		cfg.Store.ScanBatchSize = fc.Store.ScanBatchSize
	}
	if fc.Sweeper.Schedule != "" {
		cfg.Sweeper.Schedule = fc.Sweeper.Schedule
	}
	if fc.Metrics.Enabled != nil {
		cfg.Metrics.Enabled = *fc.Metrics.Enabled
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
