// Package gemini is the LLM client adapter for the labeling pipeline. It
// speaks the Gemini generateContent REST API and folds every failure into
// the pipeline's error taxonomy: transient conditions retry with backoff,
// credential problems abort immediately, and refused generations stay
// scoped to the row that triggered them.
package gemini
