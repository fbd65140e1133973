// Package daemon wires the download orchestrator, job store, and event
// hub behind the HTTP and WebSocket surface, and enforces
// single-instance execution with a lock file.
package daemon
