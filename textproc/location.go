package textproc

import (
	"regexp"
	"strings"
)

// locationPattern anchors on prepositions and venue nouns (plus a bare "@")
// and captures the word immediately following, optionally extended by a
// Hall/Room/Building designation with trailing digits. Compiled once; the
// keyword set is the swappable piece if a locale needs different anchors.
var locationPattern = regexp.MustCompile(
	`(?i)(?:\b(?:at|in|on|location|venue|place|hall|room)\b|@)\s+` +
		`([A-Za-z][A-Za-z0-9]*(?:\s+(?:hall|room|building)\s*\d+)?)`)

// ExtractLocations scans normalized text for anchored location candidates
// and returns the non-empty captures in order of appearance. Duplicates are
// preserved; deduplication is the caller's concern. An empty slice means no
// candidate was found, which is not an error.
func ExtractLocations(text string) []string {
	if text == "" {
		return nil
	}
	matches := locationPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	locations := make([]string, 0, len(matches))
	for _, m := range matches {
		if loc := strings.TrimSpace(m[1]); loc != "" {
			locations = append(locations, loc)
		}
	}
	return locations
}
