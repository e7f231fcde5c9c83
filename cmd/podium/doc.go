// Package main hosts the Podium CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the pipeline stages as subcommands:
// ingest builds the row store from the raw archives, label runs the
// incremental Gemini passes (optionally watching the row store for changes),
// relabel replaces a single cell, export writes the merged view and game
// payload, and status reports preflight readiness and labeling coverage. It
// centralizes configuration resolution and logger setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
