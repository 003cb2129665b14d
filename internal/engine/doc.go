// Package engine orchestrates a consolidation run: ingest, aggregation,
// consolidation, validation, canonical selection, optional registry
// verification, persistence. Phases run strictly in order; a run either
// completes and commits or aborts leaving the store untouched.
package engine
