// Package swtch implements the context-switch primitive: the
// architecture-dependent routine spec.md §4 and §9 describe as "a black
// box with a precise contract" and ask to keep "in a tiny assembly
// routine with a documented register contract".
//
// Go offers no user-level stack save/restore, and needs none: each
// thread.TCB is backed by exactly one goroutine, permanently parked on its
// own resume channel except while actually running. Switch is the entire
// contract — everything else in this module (package sched) treats it as
// opaque.
package swtch

import "github.com/joeycumines/go-schedcore/thread"

// Switch hands the CPU from prev to next.
//
// Contract:
//   - Switch must be called with prev and next already fully updated to
//     their post-switch state (Status, ready/sleep queue membership,
//     ctx.current) by the caller, and with the scheduler's critical
//     section (sched.Context.mu) already RELEASED. Unlike a real
//     switch_threads, this blocks the calling goroutine; holding a
//     process-wide lock across that block would deadlock the thread
//     being switched to the moment it needed the same lock (e.g. to
//     Block immediately, as the wakeup thread's body does).
//   - next's goroutine is resumed by a single non-blocking send on its
//     resume channel (buffered to size 1, so this never blocks even if
//     the goroutine has not yet reached its park point).
//   - If prevExiting is false, the calling goroutine (prev's) blocks on
//     its own resume channel until a future Switch resumes it. This is
//     the "save outgoing state" half of the contract: by the time Switch
//     returns to its caller, prev has been fully descheduled and next is
//     the one making progress.
//   - If prevExiting is true, Switch returns immediately without parking
//     prev — prev's goroutine is expected to unwind and terminate (spec.md
//     §4.7, exit never returns to its caller).
//
// Switch does not touch prev/next's Status, queue membership, or any
// scheduler bookkeeping; package sched owns all of that, performed before
// the handoff rather than "on next's stack" after it (see sched.schedule).
func Switch(prev, next *thread.TCB, prevExiting bool) {
	if err := next.CheckMagic(); err != nil {
		panic(err)
	}
	// Wake the incoming thread. Buffered by 1: never blocks.
	select {
	case next.ResumeChan() <- struct{}{}:
	default:
		// already has a pending resume signal (can't happen under the
		// documented contract, since a thread is resumed at most once
		// between parks, but guard rather than deadlock a malformed
		// caller).
	}

	if prevExiting {
		return
	}

	if err := prev.CheckMagic(); err != nil {
		panic(err)
	}
	<-prev.ResumeChan()
}

// ActivateAddressSpace is the address-space hook spec.md §6 describes:
// called on every context switch after a new thread is selected. This
// core never runs more than one address space (spec.md §1 scopes out
// virtual memory), so it is a documented no-op extension point, not an
// unwired dependency — a multi-process port would replace this call with
// a real page-directory activation.
func ActivateAddressSpace(*thread.TCB) {}
