// Package training holds the data shared by the training-loop driver and its
// observers: immutable per-epoch and per-batch log records, the append-only
// history built from them, and the mutable training state.
//
// The package has no behaviour of its own beyond bookkeeping. Keeping the
// types here lets the schedule, performance and observer packages depend on
// them without depending on each other.
package training
