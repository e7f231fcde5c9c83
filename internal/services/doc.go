// Package services defines shared utilities consumed by the labeling engine
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, task names, and label keys for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the behaviours the engine cares about (abort vs skip row).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability, retries) stays uniform.
package services
