// Package labels persists the per-speech label cells produced by the
// labeling tasks. Cells are keyed (year, category, column) and typed as
// integer or text; an absent cell has no row, which is what makes the
// merge-only write path safe to re-run.
package labels
