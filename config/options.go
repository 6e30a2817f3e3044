// Package config implements the boot-time configuration surface for the
// scheduler core: the MLFQ flag (spec.md §6, "-o mlfqs"), the timer
// frequency, and the preemption quantum. Built as a functional-options
// struct, the same way the teacher's eventloop.LoopOption is.
package config

import "github.com/joeycumines/go-schedcore/thread"

// Options holds resolved scheduler-core configuration.
type Options struct {
	MLFQS     bool
	TimerFreq int
	TimeSlice int
}

// Option configures Options.
type Option interface {
	apply(*Options)
}

type optionFunc func(*Options)

func (f optionFunc) apply(o *Options) { f(o) }

// WithMLFQS enables multi-level feedback queue scheduling. Absent, static
// priority mode is used (spec.md §6).
func WithMLFQS() Option {
	return optionFunc(func(o *Options) { o.MLFQS = true })
}

// WithTimerFreq overrides the number of ticks per second (default
// thread.TimerFreq).
func WithTimerFreq(n int) Option {
	return optionFunc(func(o *Options) { o.TimerFreq = n })
}

// WithTimeSlice overrides the preemption quantum, in ticks (default
// thread.TimeSlice).
func WithTimeSlice(n int) Option {
	return optionFunc(func(o *Options) { o.TimeSlice = n })
}

// Resolve applies opts over the documented defaults.
func Resolve(opts ...Option) *Options {
	cfg := &Options{
		TimerFreq: thread.TimerFreq,
		TimeSlice: thread.TimeSlice,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(cfg)
	}
	return cfg
}
