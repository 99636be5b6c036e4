package textproc

import (
	"regexp"
	"strings"
)

// Context window sizes around a title match, in bytes of the normalized
// text. The window hands a human reviewer the surrounding disambiguating
// text alongside the bare match.
const (
	contextBefore = 5
	contextAfter  = 10
)

// Event-type keyword vocabulary. Longer keywords sort before their
// abbreviations so "conference" is not clipped to "conf". Swappable per
// locale without touching the extraction logic.
const titleKeywords = `meeting|appointment|event|call|discussion|session|` +
	`gathering|conference|webinar|workshop|seminar|standup|sync|demo|` +
	`lecture|class|party|mtg|appt|conf|sem`

// titlePattern matches a keyword plus the following run of letters and
// whitespace. titleVenuePattern additionally requires the run to end in a
// Hall/Room/Building designation with digits; it is tried first so trailing
// room numbers are kept, since the bare letter run cannot reach past them.
var (
	titlePattern      = regexp.MustCompile(`(?i)\b(?:` + titleKeywords + `)\b[a-zA-Z\s]*`)
	titleVenuePattern = regexp.MustCompile(`(?i)\b(?:` + titleKeywords + `)\b[a-zA-Z\s]*\b(?:hall|room|building)\s*\d+`)
)

// TitleMatch is a candidate event title with its surrounding context window.
type TitleMatch struct {
	// Title is the matched keyword and its trailing description run.
	Title string
	// Context spans from 5 bytes before the match to 10 bytes after it,
	// clamped to the text bounds.
	Context string
}

// ExtractTitle scans normalized text for the first event-type keyword match
// and returns it with its context window. Scanning stops at the first match;
// later candidates are deliberately ignored. The second return is false when
// no keyword occurs.
func ExtractTitle(text string) (TitleMatch, bool) {
	loc := titlePattern.FindStringIndex(text)
	if loc == nil {
		return TitleMatch{}, false
	}
	// Prefer the venue-suffixed reading of the same keyword occurrence. A
	// venue match starting at a later keyword does not override the
	// first-match policy.
	if vloc := titleVenuePattern.FindStringIndex(text); vloc != nil && vloc[0] == loc[0] {
		loc = vloc
	}
	start, end := loc[0], loc[1]
	ctxStart := start - contextBefore
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := end + contextAfter
	if ctxEnd > len(text) {
		ctxEnd = len(text)
	}
	return TitleMatch{
		Title:   strings.TrimSpace(text[start:end]),
		Context: text[ctxStart:ctxEnd],
	}, true
}
