// Package export publishes labeled speeches for downstream consumers.
//
// Two artifacts come out of a run: a merged CSV joining every catalog
// row with whatever label cells exist for it, and a game payload JSON
// holding only the speeches whose snippet survived grading. The package
// also computes per-task coverage counts for status reporting.
package export
