// Package logging assembles the structured slog loggers used across
// snatch components.
//
// It centralizes level parsing, output plumbing, and attribute helpers
// so every component emits log lines with the same shape, and provides
// a no-op logger for tests and wiring code that cannot fail.
package logging
