package sched_test

import (
	"sync"
	"testing"

	"github.com/joeycumines/go-schedcore/sched"
	"github.com/joeycumines/go-schedcore/thread"
	"github.com/stretchr/testify/require"
)

func newCtx(t *testing.T) *sched.Context {
	t.Helper()
	ctx := sched.New(nil)
	ctx.Init("main")
	ctx.Start()
	return ctx
}

// TestRoundRobin mirrors spec.md scenario S1: four threads at the same
// priority as main busy-yield 10 times each, recording their id; the
// concatenated log must be a repeating permutation of the four ids with
// no id appearing twice consecutively.
func TestRoundRobin(t *testing.T) {
	ctx := newCtx(t)

	var mu sync.Mutex
	var log []string
	var doneMu sync.Mutex
	done := 0

	spawn := func(name string) {
		_, err := ctx.Create(name, thread.PriDefault, func(any) {
			for i := 0; i < 10; i++ {
				mu.Lock()
				log = append(log, name)
				mu.Unlock()
				ctx.Yield()
			}
			doneMu.Lock()
			done++
			doneMu.Unlock()
		}, nil)
		require.NoError(t, err)
	}

	spawn("A")
	spawn("B")
	spawn("C")
	spawn("D")

	for i := 0; i < 10000; i++ {
		doneMu.Lock()
		d := done
		doneMu.Unlock()
		if d == 4 {
			break
		}
		ctx.Yield()
	}

	doneMu.Lock()
	require.Equal(t, 4, done)
	doneMu.Unlock()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, log, 40)
	for i := 1; i < len(log); i++ {
		require.NotEqual(t, log[i-1], log[i], "id repeated consecutively at %d", i)
	}
}

// TestPriorityPreemption mirrors spec.md scenario S2: a high-priority
// thread created while main is running gets the CPU before main resumes.
func TestPriorityPreemption(t *testing.T) {
	ctx := sched.New(nil)
	ctx.Init("main")
	ctx.Start()

	var order []string
	var mu sync.Mutex

	_, err := ctx.Create("High", 40, func(any) {
		mu.Lock()
		order = append(order, "H")
		mu.Unlock()
	}, nil)
	require.NoError(t, err)

	mu.Lock()
	order = append(order, "main-resumed")
	mu.Unlock()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"H", "main-resumed"}, order)
}

// TestCleanExit mirrors spec.md scenario S6: 100 threads are created, each
// exits immediately; afterward the all-threads registry contains exactly
// {main, idle}. (The wakeup thread belongs to package sleep, not this
// package's scope.)
func TestCleanExit(t *testing.T) {
	ctx := newCtx(t)

	var doneMu sync.Mutex
	done := 0

	for i := 0; i < 100; i++ {
		_, err := ctx.Create("ephemeral", thread.PriDefault, func(any) {
			doneMu.Lock()
			done++
			doneMu.Unlock()
		}, nil)
		require.NoError(t, err)
	}

	for i := 0; i < 10000; i++ {
		doneMu.Lock()
		d := done
		doneMu.Unlock()
		if d == 100 {
			break
		}
		ctx.Yield()
	}

	doneMu.Lock()
	require.Equal(t, 100, done)
	doneMu.Unlock()

	require.Equal(t, 2, ctx.Registry().All.Len())
}

func TestCreateRejectsOutOfRangePriority(t *testing.T) {
	ctx := newCtx(t)
	_, err := ctx.Create("bad", thread.PriMax+1, func(any) {}, nil)
	require.Error(t, err)
}

func TestTickRequestsYieldAfterQuantum(t *testing.T) {
	ctx := newCtx(t)
	var tick uint64
	var yieldedAt uint64
	for i := 0; i < thread.TimeSlice+1; i++ {
		tick++
		if ctx.Tick(tick) {
			yieldedAt = tick
			break
		}
	}
	require.Equal(t, uint64(thread.TimeSlice), yieldedAt)
}

func TestTickNoYieldWhenReadyListEmpty(t *testing.T) {
	ctx := newCtx(t)
	// main is the only non-idle thread and nothing else is ready: a
	// single tick must not request a yield purely from the quantum
	// (quantum is thread.TimeSlice, > 1) nor from priority comparison
	// (ready list is empty).
	require.False(t, ctx.Tick(1))
}
