package ytdlp

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var supportedURL = regexp.MustCompile(`^https?://(www\.)?(youtube\.com/(watch\?v=|shorts/|embed/|v/)|youtu\.be/)`)

// IsSupportedURL reports whether the URL matches an accepted source
// shape: youtube.com/watch?v=, /shorts/, /embed/, /v/, or youtu.be/.
func IsSupportedURL(url string) bool {
	return supportedURL.MatchString(strings.TrimSpace(url))
}

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[info\] ([^:]+): Downloading`),
	regexp.MustCompile(`\[download\] Destination: .*_(.+)\.`),
	regexp.MustCompile(`\[youtube\] (\w+): Downloading.*webpage`),
}

var progressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%`),
	regexp.MustCompile(`(\d+\.?\d*)%\s+of`),
}

var sizePattern = regexp.MustCompile(`\[download\]\s+(\d+\.?\d*\s*[KMGT]?B)`)

// outputParser scans one attempt's stdout for title, progress, and
// size signals. It keeps only the first title and the last size.
// Progress readings are accepted only when they advance past the last
// accepted value and stay within [0,100], so duplicates and
// out-of-order readings from parallel fragments never reach listeners.
type outputParser struct {
	title        string
	size         string
	lastProgress int
}

// consume scans a single output line. The returned percentage is valid
// only when accepted is true.
func (p *outputParser) consume(line string) (percent int, accepted bool) {
	if p.title == "" {
		for _, pattern := range titlePatterns {
			if match := pattern.FindStringSubmatch(line); match != nil {
				p.title = strings.TrimSpace(match[1])
				break
			}
		}
	}

	if match := sizePattern.FindStringSubmatch(line); match != nil {
		p.size = strings.TrimSpace(match[1])
	}

	for _, pattern := range progressPatterns {
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		raw, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, false
		}
		value := int(math.Round(raw))
		if value <= p.lastProgress || value > 100 {
			return 0, false
		}
		p.lastProgress = value
		return value, true
	}
	return 0, false
}
