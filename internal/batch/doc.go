// Package batch holds the sink's write-side accumulation primitives: a
// bounded Buffer whose drain is an atomic swap of the live batch, and a
// Scheduler that debounces idle-timeout flushes into at most one pending
// timer per sink.
//
// The Buffer's drain is the sole synchronization point between the append
// path and the flush paths. Everything downstream of a drain operates on a
// detached batch no other goroutine can reach.
package batch
