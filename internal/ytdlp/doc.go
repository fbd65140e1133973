// Package ytdlp wraps the external yt-dlp binary for single-video
// downloads.
//
// Each download walks an ordered list of invocation strategies, from a
// quality-constrained request with a desktop browser signature down to
// a take-anything fallback with a mobile client identity. The process
// output is streamed and scanned for title, progress, and size
// signals; stderr is kept in full so terminal failures can be mapped
// to normalized, user-facing messages.
package ytdlp
