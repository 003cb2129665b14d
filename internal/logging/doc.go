// Package logging assembles the structured slog loggers used across stitch.
//
// It centralizes level and output plumbing for the console and JSON handlers
// and exposes context-aware helpers so engine phases automatically tag log
// lines with the run identifier and phase name. A no-op logger is provided
// for tests and wiring code that cannot fail.
package logging
