// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"path/filepath"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log line encoding: text or json.
	LogFormat string `koanf:"log_format"`
	// LogFile, when set, writes logs to a size-rotated file instead of stdout.
	LogFile string `koanf:"log_file"`
	// LogMaxSizeMB, LogMaxBackups and LogMaxAgeDays bound log file rotation.
	LogMaxSizeMB  int `koanf:"log_max_size_mb"`
	LogMaxBackups int `koanf:"log_max_backups"`
	LogMaxAgeDays int `koanf:"log_max_age_days"`
	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`
	// BaseDir is the application base directory relative paths resolve against.
	BaseDir string `koanf:"base_dir"`
	// ModelPath locates the serialized model artifact.
	ModelPath string `koanf:"model_path"`
	// ReadTimeoutMS and WriteTimeoutMS bound HTTP request handling.
	ReadTimeoutMS  int `koanf:"read_timeout_ms"`
	WriteTimeoutMS int `koanf:"write_timeout_ms"`
	// MaxBodyBytes caps the POST /predict request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		LogMaxSizeMB:   100,
		LogMaxBackups:  3,
		LogMaxAgeDays:  28,
		Addr:           ":8000",
		BaseDir:        ".",
		ModelPath:      filepath.Join("model", "model.gob"),
		ReadTimeoutMS:  10_000,
		WriteTimeoutMS: 10_000,
		MaxBodyBytes:   1 << 20,
	}
}

// ResolvedModelPath returns ModelPath, joined to BaseDir when relative.
func (c *Config) ResolvedModelPath() string {
	if filepath.IsAbs(c.ModelPath) || c.BaseDir == "" {
		return c.ModelPath
	}
	return filepath.Join(c.BaseDir, c.ModelPath)
}

// ReadTimeout returns ReadTimeoutMS as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns WriteTimeoutMS as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}
