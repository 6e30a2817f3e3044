// Package policy implements the two priority policies spec.md §4.11
// describes: static priority (the default) and MLFQ (multi-level feedback
// queue), selected by config.Options.MLFQS.
//
// Grounded on floater's small-function-per-conversion style (one function
// per unit conversion, composed rather than inlined) for the FP formula
// breakdown, and on catrate/rates.go's exponential decay / rate accounting
// for the shape of the load average's EMA update — generalized here from a
// byte/event rate over a fixed window to a ready-thread-count rate
// recomputed once per simulated second.
package policy
