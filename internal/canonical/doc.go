// Package canonical selects the surviving identifier for each validated
// group and mints replacement identifiers where a split left a group without
// one of its own.
package canonical
