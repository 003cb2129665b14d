// Package registry loads the authoritative registry extract and verifies
// canonical records against it. Verification is read-only: it attaches
// registry references and raises mismatches but never changes a record.
package registry
