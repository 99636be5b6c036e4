package textproc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrNoDate reports that no date-like substring could be resolved. It is a
// valid terminal outcome for date-free notices, not a processing fault.
var ErrNoDate = errors.New("textproc: no date found")

// DateCandidate pairs a matched substring with its resolved absolute date.
type DateCandidate struct {
	// Text is the fragment of the input the resolver matched.
	Text string
	// When is the resolved absolute date.
	When time.Time
}

// DateResolver is the natural-language date engine boundary. Search returns
// candidates in reading order; Resolve normalizes a single matched fragment.
// Implementations resolve ambiguous partial dates (a month/day without a
// year, a bare weekday name) to the nearest future occurrence, since inputs
// are upcoming-event notices.
type DateResolver interface {
	Search(text string) ([]DateCandidate, error)
	Resolve(fragment string) (time.Time, error)
}

var (
	hashtagNumbers = regexp.MustCompile(`#\d+`)
	strayAt        = regexp.MustCompile(`\s*@\s*`)
)

// prefilterDate scrubs constructs that mislead date resolution: hashtag
// numbers like "#2024" would otherwise read as a year, and "@" glued to a
// time token ("@5pm") corrupts its boundary.
func prefilterDate(text string) string {
	text = hashtagNumbers.ReplaceAllString(text, "")
	text = strayAt.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
}

// ExtractDate finds the single event date in normalized text. The first
// candidate the resolver returns is authoritative; when several date-like
// substrings appear (a "posted on" date next to an "event on" date) no
// semantic disambiguation is attempted. A resolver fault or an empty
// candidate list both yield ErrNoDate — a date is never fabricated.
func ExtractDate(r DateResolver, text string) (DateCandidate, error) {
	candidates, err := DateCandidates(r, text)
	if err != nil {
		return DateCandidate{}, err
	}
	return candidates[0], nil
}

// DateCandidates returns every resolved date in reading order. Resolver
// faults are folded into ErrNoDate so extraction stays local and
// non-contagious.
func DateCandidates(r DateResolver, text string) ([]DateCandidate, error) {
	filtered := prefilterDate(text)
	if filtered == "" {
		return nil, ErrNoDate
	}
	candidates, err := r.Search(filtered)
	if err != nil {
		return nil, fmt.Errorf("%w: resolver: %v", ErrNoDate, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoDate
	}
	return candidates, nil
}
