// Package observation defines the fixed-shape raw input row and reduces the
// observation stream to per-identifier nodes.
//
// Aggregation is the only phase that touches raw rows; everything downstream
// works on the much smaller node set. Reduction is sharded across workers
// because the per-node merges (count sums, set unions, minimum first-seen
// index) are commutative and associative.
package observation
