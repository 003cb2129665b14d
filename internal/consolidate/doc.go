// Package consolidate merges primary identifiers that evidence a single
// person into clusters.
//
// The merge relation is computed over a disjoint-set forest held in an
// explicit arena, never ambient state. Three passes run strictly in order:
// same-record co-occurrence, shared-secondary-identifier grouping iterated to
// a fixed point, and trailing-zero equivalence. Each pass is idempotent, so
// re-running a pass on its own converged output produces no further unions.
package consolidate
