// Package textproc turns a noisy recognized transcript into structured event
// fields. The normalizer scrubs recognition junk; the extractors scan the
// normalized text for keyword-anchored patterns and independently report a
// title, a resolved calendar date, and location candidates. Flyer text is
// frequently recognized with inconsistent casing, so the extractors anchor on
// prepositions and venue nouns rather than capitalization heuristics.
package textproc

import (
	"regexp"
	"strings"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-zA-Z0-9\s:/,@.#-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// Normalize strips characters outside the allow-set (letters, digits,
// whitespace and : / , @ . # -), collapses whitespace runs to single spaces
// and trims the ends. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	cleaned := disallowedChars.ReplaceAllString(s, "")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
