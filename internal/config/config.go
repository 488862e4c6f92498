package config

import (
	"fmt"

	"thumbnailer/internal/logging"

	"github.com/caarlos0/env/v11"
)

// Config holds all service configuration.
type Config struct {
	// CacheDir is the thumbnail cache root directory.
	CacheDir string `env:"CACHE_DIR" envDefault:"/cache"`
	// Port is the HTTP listen port.
	Port string `env:"PORT" envDefault:"8080"`
	// Quality is the JPEG quality for generated thumbnails, 1-100.
	Quality int `env:"THUMBNAIL_QUALITY" envDefault:"85"`
	// MaxHeight bounds generated thumbnails to this height in pixels.
	MaxHeight int `env:"THUMBNAIL_MAX_HEIGHT" envDefault:"250"`
	// Workers overrides the extraction worker pool size (0 = by CPU).
	Workers int `env:"WORKER_COUNT" envDefault:"0"`
	// VipsEnabled controls the libvips fast path in the renderer.
	VipsEnabled bool `env:"VIPS_ENABLED" envDefault:"true"`
	// LogHealthChecks controls request logging for health endpoints.
	LogHealthChecks bool `env:"LOG_HEALTH_CHECKS" envDefault:"false"`
}

// Load parses and validates configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Quality < 1 || cfg.Quality > 100 {
		return nil, fmt.Errorf("THUMBNAIL_QUALITY must be 1-100, got %d", cfg.Quality)
	}
	if cfg.MaxHeight <= 0 {
		return nil, fmt.Errorf("THUMBNAIL_MAX_HEIGHT must be positive, got %d", cfg.MaxHeight)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("WORKER_COUNT must not be negative, got %d", cfg.Workers)
	}

	return cfg, nil
}

// LogSettings prints the effective configuration at startup.
func (c *Config) LogSettings() {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  CACHE_DIR:            %s", c.CacheDir)
	logging.Info("  PORT:                 %s", c.Port)
	logging.Info("  THUMBNAIL_QUALITY:    %d", c.Quality)
	logging.Info("  THUMBNAIL_MAX_HEIGHT: %d", c.MaxHeight)
	logging.Info("  WORKER_COUNT:         %d (0 = sized by CPU)", c.Workers)
	logging.Info("  VIPS_ENABLED:         %t", c.VipsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:    %t", c.LogHealthChecks)
	logging.Info("------------------------------------------------------------")
}
