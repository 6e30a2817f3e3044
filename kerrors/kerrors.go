// Package kerrors implements the error taxonomy for invariant violations,
// bad caller arguments, and allocation failures in the scheduler core (see
// spec.md §7, "Error Handling Design").
//
// Invariant violations are fatal: Fatal and FatalCause pass the error to
// Halt rather than attempting recovery, since continuing risks silently
// corrupting scheduler state. Bad caller arguments are not fatal: they are
// reported as a *RangeError returned to the caller, and Halt is not called
// for them. This package doesn't decide how to halt — Halt is an injectable hook (defaulting to panic) so tests can
// observe a fatal condition without crashing the test binary.
package kerrors

import "fmt"

// Halt is called by Fatal after constructing the error. It defaults to a
// panic, mirroring a real kernel's halt/print-and-stop behaviour. Tests
// that need to observe a fatal condition without crashing replace this
// with a function that records the error and uses runtime.Goexit, or
// similar.
var Halt = func(err error) {
	panic(err)
}

// FatalError wraps an invariant violation: a magic-number mismatch, a
// thread found in the wrong status for the transition being attempted, or
// a call made under the wrong interrupt/lock discipline.
type FatalError struct {
	// Invariant names the violated invariant, e.g. "magic", "status",
	// "interrupts-disabled".
	Invariant string
	Message   string
	Cause     error
}

func (e *FatalError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("kernel: fatal: invariant %q violated", e.Invariant)
	}
	return fmt.Sprintf("kernel: fatal: %s: %s", e.Invariant, e.Message)
}

// Unwrap returns the underlying cause, for use with errors.Is/errors.As.
func (e *FatalError) Unwrap() error {
	return e.Cause
}

// RangeError reports a caller argument outside its documented range, e.g.
// a priority outside [PRI_MIN, PRI_MAX] or a nice value outside
// [NICE_MIN, NICE_MAX].
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("kernel: range error: %s=%d outside [%d,%d]", e.Field, e.Value, e.Min, e.Max)
}

// AllocError reports a thread-creation allocation failure (spec.md §4.4).
// Like RangeError, and unlike FatalError, it is not fatal. No code path in
// this module constructs one; Create's only error result is a *RangeError.
type AllocError struct {
	Name string
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("kernel: thread %q: allocation failed", e.Name)
}

// Fatal constructs a *FatalError and invokes Halt with it, then returns the
// error (Halt is expected to not return, in production use, via panic; the
// return value exists so callers in the safe subset can still satisfy
// Go's control-flow analysis, e.g. `return nil, kerrors.Fatal(...)`).
func Fatal(invariant, message string) error {
	err := &FatalError{Invariant: invariant, Message: message}
	Halt(err)
	return err
}

// FatalCause is Fatal, with an underlying cause attached for errors.Is/As.
func FatalCause(invariant, message string, cause error) error {
	err := &FatalError{Invariant: invariant, Message: message, Cause: cause}
	Halt(err)
	return err
}
