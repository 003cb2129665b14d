// Package ingest reads observation rows from CSV exports into the fixed
// shape the engine consumes. Schema normalization across arbitrary source
// layouts is an upstream concern; this package expects the column-aligned
// export format.
package ingest
