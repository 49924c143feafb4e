// Package engine is kestrel's cooperative test-execution core. It runs
// named tests grouped into namespaces in a deterministic order, supports
// bodies that complete immediately or asynchronously through a
// continuation callback, applies once- and each-fixtures, accumulates
// pass/fail/error counters, and emits an ordered stream of report events
// ending in a run summary.
//
// Scheduling is strictly single-threaded and cooperative. Tests are
// wrapped into Actions, Actions compose into Blocks, and a Scheduler
// drives one Block at a time, suspending only where a body returns a
// Continuation and resuming when that continuation's completion callback
// fires. Per-action panics are isolated into error events so one broken
// test never aborts the remainder of a run. There is no timeout: a
// continuation that never completes stalls the run, by contract.
//
// The surrounding packages are collaborators, not parts of the engine:
// package suite registers tests and fixtures, package check performs
// assertions and reports pass/fail events, and package report renders the
// event stream.
package engine
