package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownloader()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeDownloader() {
	d := &c.Downloader
	candidates := make([]string, 0, len(d.BinaryCandidates))
	for _, candidate := range d.BinaryCandidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	if len(candidates) == 0 {
		candidates = []string{"yt-dlp"}
	}
	d.BinaryCandidates = candidates

	d.DefaultQuality = strings.ToLower(strings.TrimSpace(d.DefaultQuality))
	if d.DefaultQuality == "" {
		d.DefaultQuality = defaultQuality
	}
	if d.MinConcurrency <= 0 {
		d.MinConcurrency = defaultMinConcurrency
	}
	if d.MaxConcurrency <= 0 {
		d.MaxConcurrency = defaultMaxConcurrency
	}
	if d.DefaultConcurrency <= 0 {
		d.DefaultConcurrency = defaultConcurrency
	}
	if d.StrategyBackoffSeconds < 0 {
		d.StrategyBackoffSeconds = defaultStrategyBackoffSec
	}
	if d.RetryDelaySeconds < 0 {
		d.RetryDelaySeconds = defaultRetryDelaySec
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
