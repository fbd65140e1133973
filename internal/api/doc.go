// Package api defines the transport DTOs shared by the daemon's HTTP
// surface and the CLI client, and the converters between them and the
// internal job model.
package api
