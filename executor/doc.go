// Package executor applies a function to independent tasks, possibly in
// parallel.
//
// Executors never cancel sibling tasks when one fails: every task reports
// its own error. A task not yet started when the context is done is skipped
// and reports the context error, so work already finished stays valid.
package executor
