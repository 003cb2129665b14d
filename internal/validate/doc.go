// Package validate re-examines converged clusters against the classification
// rules and splits the ones that violate them.
//
// The invariant: a person owns at most one Temporary and at most one
// Permanent secondary identifier. A cluster holding two distinct identifiers
// of the same class conflates two people and must be split, never silently
// merged. The split policy is deterministic; clusters it cannot separate with
// confidence are surfaced for manual review instead of being guessed at.
package validate
