// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and EWI_ environment variables on top.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// DataDir holds one history file per employee.
	DataDir string `koanf:"data_dir" validate:"required"`

	// JobDir holds job definitions loaded at startup. Optional.
	JobDir string `koanf:"job_dir"`

	// FileExt is appended to the employee ID to form a history file name.
	FileExt string `koanf:"file_ext" validate:"required,startswith=."`

	// AtomicExport writes histories to a temporary file and renames it into place.
	AtomicExport bool `koanf:"atomic_export"`

	// RedocBundle is a local redoc.standalone.js served with the API docs.
	// When empty the docs page loads ReDoc from its CDN.
	RedocBundle string `koanf:"redoc_bundle"`

	// ReadTimeoutMS and WriteTimeoutMS bound HTTP request handling.
	ReadTimeoutMS  int `koanf:"read_timeout_ms" validate:"gte=0"`
	WriteTimeoutMS int `koanf:"write_timeout_ms" validate:"gte=0"`
}

// New creates a Config with defaults. Context is accepted first to match the
// Load signature and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		DataDir:        ".usr",
		JobDir:         ".jobs",
		FileExt:        ".txt",
		AtomicExport:   true,
		ReadTimeoutMS:  5_000,
		WriteTimeoutMS: 10_000,
	}
}

// ReadTimeout returns ReadTimeoutMS as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns WriteTimeoutMS as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}
