package ytdlp

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind is the normalized category of a download failure.
type Kind string

const (
	KindInvalidURL      Kind = "invalid_url"
	KindSpawn           Kind = "spawn"
	KindUnavailable     Kind = "unavailable"
	KindAgeRestricted   Kind = "age_restricted"
	KindRegionBlocked   Kind = "region_blocked"
	KindRateLimited     Kind = "rate_limited"
	KindAccessDenied    Kind = "access_denied"
	KindAntiAutomation  Kind = "anti_automation"
	KindArtifactMissing Kind = "artifact_missing"
	KindGeneric         Kind = "generic"
)

// FailureError carries the normalized, user-facing failure message for
// a download alongside its category.
type FailureError struct {
	Kind    Kind
	Message string
}

func (e *FailureError) Error() string {
	return e.Message
}

// classifications maps known stderr substrings to normalized messages,
// evaluated top to bottom with first match winning.
var classifications = []struct {
	substring string
	kind      Kind
	message   string
}{
	{"Video unavailable", KindUnavailable, "Video is unavailable or private"},
	{"Sign in to confirm", KindAgeRestricted, "Video requires age verification"},
	{"This video is not available", KindRegionBlocked, "Video is not available in your region"},
	{"HTTP Error 429", KindRateLimited, "Rate limited by YouTube. Please try again later"},
	{"HTTP Error 403", KindAccessDenied, "Access denied by YouTube. Trying alternative method..."},
	{"nsig extraction failed", KindAntiAutomation, "YouTube anti-bot protection detected. Trying alternative method..."},
}

// classifyFailure maps a failed attempt's captured stderr to a
// FailureError. Unmatched output falls back to a generic message
// carrying the stderr tail.
func classifyFailure(stderr string, runErr error) *FailureError {
	var spawn *SpawnError
	if errors.As(runErr, &spawn) {
		return &FailureError{Kind: KindSpawn, Message: fmt.Sprintf("Failed to spawn yt-dlp: %v", spawn.Err)}
	}

	for _, entry := range classifications {
		if strings.Contains(stderr, entry.substring) {
			return &FailureError{Kind: entry.kind, Message: entry.message}
		}
	}

	tail := stderrTail(stderr)
	if tail == "" {
		return &FailureError{Kind: KindGeneric, Message: fmt.Sprintf("Download failed: %v", runErr)}
	}
	return &FailureError{Kind: KindGeneric, Message: "Download failed: " + tail}
}

// stderrTail returns the last non-empty stderr line, capped so the
// stored error message stays displayable.
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			const maxTail = 300
			if len(line) > maxTail {
				cut := maxTail
				for cut > 0 && !utf8.RuneStart(line[cut]) {
					cut--
				}
				line = line[:cut]
			}
			return line
		}
	}
	return ""
}
