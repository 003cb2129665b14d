// Package store persists run outputs to SQLite so past consolidation runs
// can be reported on and audited. A run's rows are written in one
// transaction after the engine finishes; aborted runs leave nothing behind.
package store
