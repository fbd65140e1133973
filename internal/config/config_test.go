package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snatch/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Downloader.DefaultQuality != "480p" {
		t.Fatalf("unexpected default quality %q", cfg.Downloader.DefaultQuality)
	}
	if cfg.Downloader.MinConcurrency != 1 || cfg.Downloader.MaxConcurrency != 10 {
		t.Fatalf("unexpected concurrency bounds: %+v", cfg.Downloader)
	}
	if !filepath.IsAbs(cfg.Paths.DownloadDir) {
		t.Fatalf("expected absolute download dir, got %q", cfg.Paths.DownloadDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[paths]
download_dir = "~/snatch-downloads"

[downloader]
default_quality = "  Best  "
binary_candidates = [" /opt/yt-dlp ", "", "yt-dlp"]

[logging]
format = "JSON"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.Downloader.DefaultQuality != "best" {
		t.Fatalf("expected normalized quality, got %q", cfg.Downloader.DefaultQuality)
	}
	if len(cfg.Downloader.BinaryCandidates) != 2 {
		t.Fatalf("expected blank candidates dropped: %v", cfg.Downloader.BinaryCandidates)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized format, got %q", cfg.Logging.Format)
	}
	if strings.HasPrefix(cfg.Paths.DownloadDir, "~") {
		t.Fatalf("expected tilde expansion, got %q", cfg.Paths.DownloadDir)
	}
}

func TestLoadRejectsBadQuality(t *testing.T) {
	path := writeConfig(t, `
[downloader]
default_quality = "4k"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown quality tier")
	}
}

func TestLoadRejectsInvertedConcurrencyBounds(t *testing.T) {
	path := writeConfig(t, `
[downloader]
min_concurrency = 8
max_concurrency = 2
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for inverted bounds")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample returned error: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when file already exists")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[downloader]") {
		t.Fatal("sample config missing downloader section")
	}
}
