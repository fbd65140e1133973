package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDownloader(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.DownloadDir == "" {
		return errors.New("paths.download_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateDownloader() error {
	d := c.Downloader
	switch d.DefaultQuality {
	case "720p", "480p", "360p", "worst", "best":
	default:
		return fmt.Errorf("downloader.default_quality: unknown tier %q", d.DefaultQuality)
	}
	if d.MinConcurrency > d.MaxConcurrency {
		return fmt.Errorf("downloader.min_concurrency (%d) exceeds max_concurrency (%d)", d.MinConcurrency, d.MaxConcurrency)
	}
	if d.DefaultConcurrency < d.MinConcurrency || d.DefaultConcurrency > d.MaxConcurrency {
		return fmt.Errorf("downloader.default_concurrency (%d) must be within [%d, %d]", d.DefaultConcurrency, d.MinConcurrency, d.MaxConcurrency)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
