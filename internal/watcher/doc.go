// Package watcher re-runs the labeling pipeline whenever the row store
// changes on disk.
//
// The ingest pipeline lands the row store through a rename, so the
// watcher monitors the parent directory and reacts only to events for
// the row store path itself. Rapid successive changes are debounced; a
// labeling run starts once the file has been quiet for the configured
// window. Failed runs are logged and watching continues.
package watcher
