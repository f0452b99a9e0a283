// Package config reads process settings from the environment.
//
//	MINISK_LOG_LEVEL    debug | info | warn | error   (default warn)
//	MINISK_LOG_BACKEND  zerolog | slog                (default zerolog)
//	MINISK_RETURN_TYPE  frame | matrix                (default frame)
//	MINISK_STORE_PATH   model store file              (default minisk.db)
package config

import (
	"io"

	"github.com/kelseyhightower/envconfig"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/pkg/log"
)

// Prefix is the environment variable prefix.
const Prefix = "MINISK"

// Config holds the process settings.
type Config struct {
	LogLevel   string `envconfig:"LOG_LEVEL" default:"warn"`
	LogBackend string `envconfig:"LOG_BACKEND" default:"zerolog"`
	ReturnType string `envconfig:"RETURN_TYPE" default:"frame"`
	StorePath  string `envconfig:"STORE_PATH" default:"minisk.db"`
}

// Log backends.
const (
	BackendZerolog = "zerolog"
	BackendSlog    = "slog"
)

// Load reads and validates the configuration from the environment.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, errors.Wrap(err, "error loading environment variables")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the log level, log backend and return type.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("MINISK_LOG_LEVEL", "must be debug, info, warn or error", c.LogLevel)
	}
	switch c.LogBackend {
	case BackendZerolog, BackendSlog, "":
	default:
		return errors.NewValidationError("MINISK_LOG_BACKEND", "must be zerolog or slog", c.LogBackend)
	}
	if err := c.Estimator().Validate(); err != nil {
		return errors.NewValidationError("MINISK_RETURN_TYPE", "must be frame or matrix", c.ReturnType)
	}
	if c.StorePath == "" {
		return errors.NewValidationError("MINISK_STORE_PATH", "must not be empty", c.StorePath)
	}
	return nil
}

// Estimator returns the estimator default configuration.
func (c *Config) Estimator() model.Config {
	return model.Config{ReturnType: model.ReturnType(c.ReturnType)}
}

// Level returns the parsed log level.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.LevelWarn
	}
	return level
}

type warningRouter interface {
	log.LoggerProvider
	RouteWarnings()
}

// Provider returns a logger provider of the configured backend writing to w.
// An empty backend means zerolog.
func (c *Config) Provider(w io.Writer) log.LoggerProvider {
	if c.LogBackend == BackendSlog {
		return log.NewSlogProviderWithWriter(w, c.Level())
	}
	return log.NewZerologProviderWithWriter(w, c.Level())
}

// Apply installs the configured logger provider writing to w, routes
// warnings through it and sets the estimator default configuration.
func (c *Config) Apply(w io.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	provider := c.Provider(w)
	if r, ok := provider.(warningRouter); ok {
		r.RouteWarnings()
	}
	log.SetProvider(provider)
	return model.SetDefaultConfig(c.Estimator())
}
