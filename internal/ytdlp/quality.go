package ytdlp

import "strings"

// Quality selects the target resolution tier for a download.
type Quality string

const (
	Quality720p  Quality = "720p"
	Quality480p  Quality = "480p"
	Quality360p  Quality = "360p"
	QualityWorst Quality = "worst"
	QualityBest  Quality = "best"
)

// DefaultQuality is the mid-tier applied when a request names none.
const DefaultQuality = Quality480p

var allQualities = []Quality{Quality720p, Quality480p, Quality360p, QualityWorst, QualityBest}

// AllQualities returns the ordered list of known quality tiers.
func AllQualities() []Quality {
	cp := make([]Quality, len(allQualities))
	copy(cp, allQualities)
	return cp
}

// ParseQuality converts a string into a known Quality.
func ParseQuality(value string) (Quality, bool) {
	normalized := Quality(strings.ToLower(strings.TrimSpace(value)))
	for _, q := range allQualities {
		if q == normalized {
			return q, true
		}
	}
	return "", false
}

// FormatSelector maps the tier to a yt-dlp format expression.
func (q Quality) FormatSelector() string {
	switch q {
	case Quality720p:
		return "best[height<=720]/best[ext=mp4]/best"
	case Quality480p:
		return "best[height<=480]/best[ext=mp4]/best"
	case Quality360p:
		return "best[height<=360]/best[ext=mp4]/best"
	case QualityWorst:
		return "worst[ext=mp4]/worst"
	case QualityBest:
		return "best[ext=mp4]/best"
	default:
		return "best[height<=480]/best[ext=mp4]/best"
	}
}
