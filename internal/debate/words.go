package debate

import "strings"

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// WordLimits is the inclusive range of accepted statement lengths.
type WordLimits struct {
	Min int
	Max int
}

// DefaultWordLimits are the bounds used by the deployment: 75 to 300 words.
var DefaultWordLimits = WordLimits{Min: 75, Max: 300}

// Accepts reports whether n words is within the limits, inclusive.
func (l WordLimits) Accepts(n int) bool {
	return n >= l.Min && n <= l.Max
}

// CanSubmit reports whether the submit control should be enabled for draft
// given the current progress. The server re-validates; this is advisory.
func (l WordLimits) CanSubmit(p Progress, draft string) bool {
	return p.NextAction == ActionSubmitPost && p.CanSubmitPost && l.Accepts(CountWords(draft))
}
