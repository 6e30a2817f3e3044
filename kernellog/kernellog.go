// Package kernellog provides package-level structured logging for the
// scheduler core, the way eventloop/logging.go does for its package: a
// single global logger, safe for concurrent use, defaulting to a
// zero-overhead no-op until the embedding program configures one.
//
// Unlike eventloop, which defines its own minimal Logger interface (to
// avoid forcing a dependency on any particular logging library on
// unrelated consumers), this module commits to
// github.com/joeycumines/logiface, backed by github.com/joeycumines/stumpy
// — logiface's own "model" backend — as its structured logging stack, per
// SPEC_FULL.md's ambient-stack section.
package kernellog

import (
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Event is the concrete logiface event type this module logs through.
type Event = stumpy.Event

// Logger is the concrete logger type this module logs through.
type Logger = logiface.Logger[*Event]

var global struct {
	sync.RWMutex
	logger *Logger
}

func init() {
	global.logger = logiface.New[*Event](
		stumpy.L.WithStumpy(),
		logiface.WithLevel[*Event](logiface.LevelDisabled),
	)
}

// SetLogger installs logger as the package-wide logger used by this
// module's sched, sleep, and policy packages.
func SetLogger(logger *Logger) {
	global.Lock()
	defer global.Unlock()
	global.logger = logger
}

// Get returns the current package-wide logger. Never nil.
func Get() *Logger {
	global.RLock()
	defer global.RUnlock()
	return global.logger
}

// NewStderrLogger builds a Logger that writes JSON lines to stderr at or
// above level, using the stumpy backend (per stumpy's own doc comment,
// "intended as the model logger for the logiface package").
func NewStderrLogger(level logiface.Level) *Logger {
	return logiface.New[*Event](
		stumpy.L.WithStumpy(),
		logiface.WithLevel[*Event](level),
	)
}

// DumpTCB renders a human-readable snapshot of v (typically a *thread.TCB)
// for fatal-path diagnostics, using go-spew the way a debugger would.
func DumpTCB(v any) string {
	return spew.Sdump(v)
}
