// Package sleep implements the timer-driven sleep/wake subsystem (spec.md
// §4.10): SleepUntil, a sleep queue ordered ascending by wake tick, and a
// dedicated wakeup thread that drains expired entries.
//
// The wakeup thread is created here, not by package sched (spec.md §2
// places it one layer above scheduler core), and registered back into the
// Context via sched.Context.SetWakeupThread so sched.Yield/Tick can treat
// it specially without importing this package.
//
// Grounded on longpoll/channel.go's minimum/partial-timeout drain loop:
// that code blocks until either a timer fires or new work arrives, then
// drains every entry whose deadline has passed. This package generalizes
// that shape from a bounded channel drain to an ordered-list drain of
// "entries with deadline <= now", using sched's tick hook instead of a
// timer channel as the wake signal.
package sleep
