// Package labeler runs the incremental labeling engine. Each run walks
// the task registry in order, finds the catalog keys whose output column
// is absent and whose dependency columns are present, asks the model for
// each, and merge-writes the parsed batch before moving to the next task.
// Merge-only writes make runs idempotent and safe to interrupt: a second
// run over an unchanged catalog issues no model calls, and an aborted run
// loses at most the in-flight task's unmerged batch.
package labeler
