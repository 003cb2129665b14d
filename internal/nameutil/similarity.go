package nameutil

import (
	"github.com/agnivade/levenshtein"
)

// Score computes the token-sort levenshtein ratio between two names in
// [0, 100]. Both names are normalized to their sorted token forms first, so
// token order never affects the result and Score(a, b) == Score(b, a).
func Score(a, b string) int {
	keyA := Key(a)
	keyB := Key(b)
	if keyA == "" || keyB == "" {
		return 0
	}
	if keyA == keyB {
		return 100
	}
	distance := levenshtein.ComputeDistance(keyA, keyB)
	longest := len([]rune(keyA))
	if l := len([]rune(keyB)); l > longest {
		longest = l
	}
	if distance >= longest {
		return 0
	}
	return (longest - distance) * 100 / longest
}

// Outcome is the result of a thresholded comparison.
type Outcome string

const (
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeMatch     Outcome = "match"
)

// Matcher applies a score threshold with a minimum shared-token floor. The
// floor prevents a single common token, typically a shared surname, from
// producing a false merge on its own.
type Matcher struct {
	// Threshold is the minimum score for a match, in [0, 100].
	Threshold int
	// SharedTokenFloor is the minimum count of distinct tokens the two names
	// must have in common.
	SharedTokenFloor int
	// AmbiguityBand widens reporting below the threshold: scores in
	// [Threshold-AmbiguityBand, Threshold) are flagged OutcomeAmbiguous so
	// near misses reach manual review instead of vanishing.
	AmbiguityBand int
}

// Match reports whether two names satisfy the threshold and shared-token floor.
func (m Matcher) Match(a, b string) bool {
	_, outcome := m.Compare(a, b)
	return outcome == OutcomeMatch
}

// Compare scores two names and classifies the result against the threshold.
// The shared-token floor applies to both the match and ambiguous outcomes.
func (m Matcher) Compare(a, b string) (int, Outcome) {
	score := Score(a, b)
	if SharedTokens(a, b) < m.SharedTokenFloor {
		return score, OutcomeNoMatch
	}
	switch {
	case score >= m.Threshold:
		return score, OutcomeMatch
	case m.AmbiguityBand > 0 && score >= m.Threshold-m.AmbiguityBand:
		return score, OutcomeAmbiguous
	default:
		return score, OutcomeNoMatch
	}
}
