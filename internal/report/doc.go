// Package report shapes persisted run data into table form for the CLI.
// Rendering is left to the caller; this package only decides columns, rows
// and ordering.
package report
