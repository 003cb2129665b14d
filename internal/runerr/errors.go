package runerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers used to classify run failures. Engine phases wrap their
// errors with one of these so callers can route the outcome without parsing
// message text.
var (
	// ErrMalformedInput marks rows or files the engine could not parse.
	ErrMalformedInput = errors.New("malformed input")
	// ErrConfiguration marks unusable configuration discovered at run time.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks missing required inputs.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks classification-rule violations inside a cluster.
	ErrConflict = errors.New("classification conflict")
	// ErrUnresolved marks clusters the validator could not split
	// deterministically.
	ErrUnresolved = errors.New("unresolved split")
	// ErrTransient marks everything else.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes phase context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "run failure"
	}
	return strings.Join(parts, ": ")
}
