package ytdlp

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// displayTitle derives a clean display title from an artifact filename
// by stripping the job-id prefix and the extension. Existing casing is
// preserved; only word-initial letters are raised.
func displayTitle(filename, prefix string) string {
	name := strings.TrimPrefix(filename, prefix)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	return titleCaser.String(name)
}
