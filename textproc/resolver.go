package textproc

import (
	"fmt"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"
)

// Resolver is the stock DateResolver, backed by go-dateparser's free-text
// date search. Ambiguous partial dates resolve to the nearest future
// occurrence.
type Resolver struct {
	now       func() time.Time
	languages []string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithNow fixes the reference time used to resolve relative and partial
// dates. Defaults to time.Now; tests pin it for determinism.
func WithNow(now func() time.Time) ResolverOption {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithResolverLanguages restricts parsing to the given language codes
// (e.g., "en"). Default lets the parser detect.
func WithResolverLanguages(langs ...string) ResolverOption {
	return func(r *Resolver) { r.languages = append([]string(nil), langs...) }
}

// NewResolver constructs the stock future-biased resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) config() *dateparser.Configuration {
	return &dateparser.Configuration{
		CurrentTime:         r.now(),
		PreferredDateSource: dateparser.Future,
		Languages:           r.languages,
	}
}

// Search scans free text for date-like substrings and resolves each to an
// absolute date, in reading order.
func (r *Resolver) Search(text string) ([]DateCandidate, error) {
	_, matches, err := dateparser.Search(r.config(), text)
	if err != nil {
		return nil, fmt.Errorf("textproc: date search: %w", err)
	}
	candidates := make([]DateCandidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, DateCandidate{Text: m.Text, When: m.Date.Time})
	}
	return candidates, nil
}

// Resolve normalizes a single date fragment into an absolute date.
func (r *Resolver) Resolve(fragment string) (time.Time, error) {
	dt, err := dateparser.Parse(r.config(), fragment)
	if err != nil {
		return time.Time{}, fmt.Errorf("textproc: resolve %q: %w", fragment, err)
	}
	return dt.Time, nil
}
