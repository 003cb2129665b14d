package classify

import (
	"strings"
	"unicode"
)

// Class is the format category of a secondary identifier.
type Class string

const (
	// ClassInvalid covers empty values, blacklist keywords, and any shape the
	// rules do not recognize.
	ClassInvalid Class = "invalid"
	// ClassTemporary is an all-digit identifier of plausible length, issued
	// before a permanent one exists.
	ClassTemporary Class = "temporary"
	// ClassPermanent is one leading letter followed by exactly twelve digits.
	ClassPermanent Class = "permanent"
)

// Rules holds the configurable classification parameters.
type Rules struct {
	// Blacklist lists keywords that classify as Invalid regardless of shape.
	// Matching is case-insensitive after trimming.
	Blacklist []string
	// MinTemporaryDigits and MaxTemporaryDigits bound the plausible length of
	// an all-digit temporary identifier.
	MinTemporaryDigits int
	MaxTemporaryDigits int
}

// DefaultRules returns the rule set used when configuration does not override it.
func DefaultRules() Rules {
	return Rules{
		Blacklist:          []string{"UNKNOWN", "N/A", "NA", "NONE", "NIL"},
		MinTemporaryDigits: 6,
		MaxTemporaryDigits: 10,
	}
}

// permanentDigits is the exact digit count that follows the leading letter of
// a permanent identifier.
const permanentDigits = 12

// Classify categorizes a raw secondary identifier. Total: every input maps to
// exactly one class.
func (r Rules) Classify(id string) Class {
	id = strings.TrimSpace(id)
	if id == "" {
		return ClassInvalid
	}
	for _, keyword := range r.Blacklist {
		if strings.EqualFold(id, keyword) {
			return ClassInvalid
		}
	}
	if allDigits(id) {
		if len(id) >= r.MinTemporaryDigits && len(id) <= r.MaxTemporaryDigits {
			return ClassTemporary
		}
		return ClassInvalid
	}
	first := rune(id[0])
	if unicode.IsLetter(first) && first < unicode.MaxASCII {
		rest := id[1:]
		if len(rest) == permanentDigits && allDigits(rest) {
			return ClassPermanent
		}
	}
	return ClassInvalid
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
