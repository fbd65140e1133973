package ytdlp

const (
	desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	mobileUserAgent  = "Mozilla/5.0 (Linux; Android 11; SM-G991B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
)

// strategy is one named yt-dlp invocation configuration.
type strategy struct {
	name string
	args []string
}

// buildStrategies returns the ordered attempt list for one download.
// Later entries trade quality and speed for a better chance of getting
// past upstream anti-automation heuristics.
func buildStrategies(quality Quality, outputTemplate, url string) []strategy {
	format := quality.FormatSelector()
	return []strategy{
		{
			name: "quality mp4",
			args: []string{
				"--format", format,
				"--output", outputTemplate,
				"--newline",
				"--no-playlist",
				"--retries", "3",
				"--fragment-retries", "3",
				"--socket-timeout", "20",
				"--user-agent", desktopUserAgent,
				url,
			},
		},
		{
			name: "android client",
			args: []string{
				"--format", format,
				"--output", outputTemplate,
				"--newline",
				"--no-playlist",
				"--retries", "5",
				"--fragment-retries", "5",
				"--socket-timeout", "30",
				"--user-agent", desktopUserAgent,
				"--add-header", "Accept-Language:en-US,en;q=0.9",
				"--extractor-args", "youtube:player_client=android",
				url,
			},
		},
		{
			name: "mobile fallback",
			args: []string{
				"--format", "worst/best",
				"--output", outputTemplate,
				"--newline",
				"--no-playlist",
				"--retries", "10",
				"--socket-timeout", "60",
				"--user-agent", mobileUserAgent,
				"--extractor-args", "youtube:player_client=android,web",
				url,
			},
		},
	}
}
