// Package logs reads the pipeline log back out for the CLI: the last N
// lines for a quick look, or a polled follow mode that streams lines as
// labeling runs append them.
//
// Tail keeps memory bounded with a ring buffer and hands back the offset
// it stopped at, so a follow started from that offset misses nothing.
package logs
