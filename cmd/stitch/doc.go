// Command stitch is the identifier consolidation CLI: it runs the
// consolidation pipeline over observation exports, verifies results against
// a registry extract, and reports on past runs.
package main
