// Package scan drives the adaptive recognition search: every registered
// preprocessing pipeline is executed and recognized, each read is scored, and
// the best-scoring candidate wins. Pipeline failures are local; a selector
// run never fails because one recipe did.
package scan

import (
	"strings"
	"unicode/utf8"

	"github.com/wudi/flyerscan/ocr"
)

// Score collapses raw per-word recognition output into a joined text string
// and a single quality score. Blank words and non-positive confidences are
// dropped first; if nothing survives the filter, the result is ("", 0).
//
// The score is the character-length-weighted mean confidence:
//
//	score = sum(len(word) * conf) / sum(len(word))
//
// Engines emit many 1-2 character noise tokens at low confidence; an
// unweighted mean would let them dilute an otherwise strong reading, so
// longer tokens count for more.
func Score(words []ocr.Word) (text string, score float64) {
	var b strings.Builder
	var weighted, length float64
	for _, w := range words {
		t := strings.TrimSpace(w.Text)
		if t == "" || w.Confidence <= 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t)
		n := float64(utf8.RuneCountInString(t))
		weighted += n * w.Confidence
		length += n
	}
	if length == 0 {
		return "", 0
	}
	return b.String(), weighted / length
}
