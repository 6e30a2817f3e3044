// Package thread implements the thread control block (TCB) and the
// all-threads registry (spec.md §3, §4.3).
//
// A TCB owns its own goroutine (the Go-native stand-in for "owns its
// kernel stack page", see SPEC_FULL.md); the registry owns the TCB itself.
// The ready list and sleep queue (see sched and sleep) hold only
// non-owning references via the TCB's embedded link fields.
package thread
