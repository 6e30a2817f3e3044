package sleep

import (
	"github.com/joeycumines/go-schedcore/kernellog"
	"github.com/joeycumines/go-schedcore/olist"
	"github.com/joeycumines/go-schedcore/sched"
	"github.com/joeycumines/go-schedcore/thread"
)

// Subsystem owns the sleep queue and the wakeup thread (spec.md §4.10).
type Subsystem struct {
	ctx    *sched.Context
	queue  *olist.List[thread.TCB]
	wakeup *thread.TCB
}

// sleepLess orders the sleep queue ascending by wake tick (spec.md §4.10
// step 2, and the invariant in spec.md §8: "sleep_queue is sorted by
// sleep_endtick ascending"). Strict, so ties preserve insertion order.
func sleepLess(a, b *thread.TCB) bool {
	return a.SleepEndTick < b.SleepEndTick
}

// Init creates the wakeup thread at PRI_MAX, registers it with ctx via
// SetWakeupThread, and wires the tick hook that notifies it. Must be
// called once, after ctx.Start() (spec.md §6: "start() creates the idle
// and wakeup threads and enables interrupts").
func Init(ctx *sched.Context) *Subsystem {
	sub := &Subsystem{
		ctx:   ctx,
		queue: olist.New(func(t *thread.TCB) *olist.Link[thread.TCB] { return &t.SleepLink }),
	}

	wakeup, err := ctx.Create("wakeup", thread.PriMax, sub.run, nil)
	if err != nil {
		// PRI_MAX is always in [PRI_MIN, PRI_MAX]; Create cannot reject it.
		panic(err)
	}
	sub.wakeup = wakeup
	ctx.SetWakeupThread(wakeup)
	ctx.AddTickHook(sub.onTick)
	return sub
}

// SleepUntil suspends the calling thread until the scheduler's tick count
// reaches endTick (spec.md §4.10): record the wake tick, insert into the
// sleep queue in wake order, then block.
func SleepUntil(sub *Subsystem, endTick uint64) {
	sub.ctx.Lock()
	cur := sub.ctx.Current()
	cur.SleepEndTick = endTick
	sub.queue.InsertOrdered(cur, sleepLess)
	sub.ctx.Unlock()

	kernellog.Get().Debug().Uint64("end_tick", endTick).Log("thread sleeping")
	sub.ctx.Block()
}

// run is the wakeup thread's entry point (spec.md §4.10, "Wakeup thread"):
// block, then on wake drain every expired sleep-queue entry, then loop.
//
// The drain loop here fully empties the currently-expired prefix of the
// queue before calling Block again (see drain), rather than waking one
// entry and returning to sleep — the spec.md §9 Open Question fix: a
// wakeup thread that only handled the queue head and went back to BLOCKED
// would miss entries that expired at the same tick (since Unblock only
// fires when the wakeup thread is observed BLOCKED by the tick hook, not
// on every tick it's runnable).
func (s *Subsystem) run(any) {
	for {
		s.ctx.Block()
		s.drain()
	}
}

// drain removes and unblocks every sleep-queue entry whose wake tick has
// passed, as of the scheduler's current tick count.
func (s *Subsystem) drain() {
	tick := s.ctx.CurrentTick()

	s.ctx.Lock()
	var expired []*thread.TCB
	for {
		head := s.queue.Front()
		if head == nil || head.SleepEndTick > tick {
			break
		}
		head.SleepEndTick = 0
		s.queue.Remove(head)
		expired = append(expired, head)
	}
	s.ctx.Unlock()

	for _, t := range expired {
		kernellog.Get().Debug().Str("name", t.Name).Log("thread woken")
		s.ctx.Unblock(t)
	}
}

// onTick is the tick hook spec.md §4.10 describes: if the sleep queue is
// non-empty, its head has expired, and the wakeup thread is BLOCKED,
// unblock it. Runs with ctx.mu already held (Tick's caller), hence
// UnblockLocked rather than Unblock.
func (s *Subsystem) onTick(ctx *sched.Context, tick uint64) {
	head := s.queue.Front()
	if head == nil || head.SleepEndTick > tick {
		return
	}
	if s.wakeup.Status != thread.Blocked {
		return
	}
	ctx.UnblockLocked(s.wakeup)
}

// QueueLen reports the number of threads currently asleep. Exposed for
// tests and diagnostics; racy without the caller holding ctx's lock.
func (s *Subsystem) QueueLen() int {
	return s.queue.Len()
}
