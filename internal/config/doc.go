// Package config loads, validates, and normalizes the snatch TOML
// configuration.
//
// Configuration sections by subsystem:
//   - Paths: artifact/log directories and the API bind address
//   - Downloader: yt-dlp binary candidates, quality and concurrency
//     policy, strategy backoff and retry debounce
//   - Logging: log format and level
//
// All path fields in a loaded config are expanded (~ resolved) and
// absolute. Missing files fall back to repository defaults so the
// daemon can start with zero configuration.
package config
