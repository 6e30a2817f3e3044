// Package sched implements the scheduler core (spec.md §4.5-§4.9): block,
// unblock, yield, exit, schedule, the tick handler, the preemption policy,
// and the idle thread.
//
// Go translation of "interrupts disabled" (spec.md §5): there is no real
// hardware interrupt line to disable from user code, and this module
// doesn't attempt to fake one with goroutine pausing. Instead, Context.mu
// *is* the critical section spec.md describes as "obtained by disabling
// interrupts" — every method that spec.md requires to run with interrupts
// off takes mu for its whole body. Package sleep and package policy, which
// also need this discipline (they mutate the sleep queue and run/MLFQ
// recompute, respectively, with interrupts notionally off), take the same
// mu via Context.Lock/Unlock.
//
// Go translation of "the tick handler runs in interrupt context" (spec.md
// §5): Tick never calls Schedule directly — consistent with spec.md's
// restriction that the tick handler "may only update statistics, increment
// counters, adjust MLFQ state, and request yield-on-return or unblock the
// wakeup thread". Tick returns whether a yield was requested; the driver
// (a real interrupt return path, in the original; here, whatever is
// advancing ticks — see cmd/kernelsim) performs that yield once Tick has
// returned, at its own safe point, exactly as spec.md §4.8 describes.
package sched

import (
	"github.com/joeycumines/go-schedcore/config"
	"github.com/joeycumines/go-schedcore/kerrors"
	"github.com/joeycumines/go-schedcore/kernellog"
	"github.com/joeycumines/go-schedcore/olist"
	"github.com/joeycumines/go-schedcore/swtch"
	"github.com/joeycumines/go-schedcore/thread"
	"sync"
)

// TickHook is invoked once per Tick call, with Context.mu held, after the
// quantum counter and tick statistics are updated and before Tick decides
// whether to request a yield (spec.md §4.8). Package sleep
// and package policy register hooks here (for the sleep-queue drain
// notification and MLFQ recompute, respectively) rather than sched
// importing either — keeping the dependency order spec.md §2 describes
// (scheduler core has no knowledge of sleep/wake or MLFQ).
type TickHook func(ctx *Context, tick uint64)

// CreateHook is invoked once per Create call made in MLFQS mode (never in
// static mode), right after the new TCB
// inherits its parent's nice/recent_cpu (spec.md §4.4 step 5: "in MLFQ
// mode, recompute this thread's priority immediately"). Package policy
// registers this under MLFQ mode to replace the caller-supplied starting
// priority with one derived from nice/recent_cpu.
type CreateHook func(t *thread.TCB)

// Context holds the scheduler-core singletons spec.md §9 lists (ready
// list, all-threads registry, tick counters, idle/wakeup/initial thread
// handles) as one value, per §9's suggestion to do so "if the target idiom
// disfavors globals". The sleep queue is held by package sleep's Subsystem
// and load_avg by package policy's Policy, not here. A process normally
// owns exactly one Context.
type Context struct {
	mu sync.Mutex

	cfg *config.Options
	reg *thread.Registry

	ready *olist.List[thread.TCB]

	current *thread.TCB
	idle    *thread.TCB
	initial *thread.TCB

	// wakeup is set by package sleep via SetWakeupThread, once it creates
	// the dedicated wakeup thread. sched never creates it itself (spec.md
	// §2 places the wakeup thread in the sleep/wake subsystem, a layer
	// above scheduler core).
	wakeup *thread.TCB

	ticksSinceYield int
	currentTick     uint64

	idleTicks   uint64
	kernelTicks uint64
	userTicks   uint64

	// haltWake is the Go stand-in for a hardware interrupt waking a
	// halted CPU: Tick sends to it unconditionally (every timer
	// interrupt un-halts real hardware, whether or not it changes what's
	// runnable), and the idle thread's body receives from it instead of
	// busy-polling. See halt.
	haltWake chan struct{}

	tickHooks   []TickHook
	createHooks []CreateHook
}

// ReadyLess is the strict "end of equal-priority run" comparator used by
// Unblock and Yield (round-robin: a newly-ready thread joins the back of
// its priority tier). Exported so package policy's MLFQ recompute can
// re-sort the ready list with the same ordering.
func ReadyLess(a, b *thread.TCB) bool {
	return a.Priority > b.Priority
}

// readyLessHead is the non-strict "head of equal-priority run" comparator
// used by YieldHead and the preemptive-insert path of SetPriority.
func readyLessHead(a, b *thread.TCB) bool {
	return a.Priority >= b.Priority
}

// New constructs a Context. Call Init, then Start, before scheduling any
// threads (spec.md §6, "Boot contract").
func New(cfg *config.Options) *Context {
	if cfg == nil {
		cfg = config.Resolve()
	}
	return &Context{
		cfg:      cfg,
		reg:      thread.NewRegistry(),
		ready:    olist.New(func(t *thread.TCB) *olist.Link[thread.TCB] { return &t.ReadyLink }),
		haltWake: make(chan struct{}, 1),
	}
}

// Registry returns the all-threads registry backing this Context.
func (ctx *Context) Registry() *thread.Registry { return ctx.reg }

// Config returns the resolved boot-time configuration.
func (ctx *Context) Config() *config.Options { return ctx.cfg }

// Lock/Unlock expose Context's critical section to packages sleep and
// policy, which must mutate scheduler-owned state (the sleep queue, MLFQ
// recompute) under the same discipline as the methods below. This is the
// Go-idiomatic reading of "protected by disabling interrupts" (spec.md
// §5) — see the package doc comment.
func (ctx *Context) Lock()   { ctx.mu.Lock() }
func (ctx *Context) Unlock() { ctx.mu.Unlock() }

// Current returns the currently running thread. Must be called with the
// lock held, or treated as a racy snapshot otherwise.
func (ctx *Context) Current() *thread.TCB { return ctx.current }

// Idle returns the idle thread.
func (ctx *Context) Idle() *thread.TCB { return ctx.idle }

// Wakeup returns the wakeup thread, or nil if package sleep has not yet
// registered one via SetWakeupThread.
func (ctx *Context) Wakeup() *thread.TCB { return ctx.wakeup }

// SetWakeupThread registers t as the wakeup thread. Called once, by
// package sleep, during its own Init.
func (ctx *Context) SetWakeupThread(t *thread.TCB) { ctx.wakeup = t }

// ReadyList returns the ready list, for packages (policy's MLFQ recompute)
// that need to re-sort or walk it under the lock.
func (ctx *Context) ReadyList() *olist.List[thread.TCB] { return ctx.ready }

// AddTickHook registers fn to run on every Tick call, after the quantum
// counter and tick statistics are updated and before the yield decision,
// in registration order.
func (ctx *Context) AddTickHook(fn TickHook) {
	ctx.tickHooks = append(ctx.tickHooks, fn)
}

// AddCreateHook registers fn to run on every Create call made in MLFQS
// mode, after the new
// TCB inherits nice/recent_cpu from its parent, in registration order.
func (ctx *Context) AddCreateHook(fn CreateHook) {
	ctx.createHooks = append(ctx.createHooks, fn)
}

// Init transforms the calling goroutine into the initial thread (spec.md
// §6: "init() ... transforms the running execution context into the
// initial thread"). Must be called exactly once, before Start.
func (ctx *Context) Init(name string) *thread.TCB {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	t := ctx.reg.New(name, thread.PriDefault, nil, nil)
	t.Status = thread.Running
	ctx.reg.Register(t)
	ctx.initial = t
	ctx.current = t
	return t
}

// Start creates the idle thread (spec.md §4.9) and returns it. Package
// sleep's Init creates the wakeup thread separately and registers it via
// SetWakeupThread; this module has no notion of sleep/wake.
func (ctx *Context) Start() *thread.TCB {
	idle, err := ctx.Create("idle", thread.PriMin, idleBody(ctx), nil)
	if err != nil {
		// allocation failure for the idle thread is not a survivable
		// boot condition.
		kerrors.Fatal("boot", "failed to create idle thread")
	}
	ctx.mu.Lock()
	ctx.idle = idle
	// Create left idle READY on the ready list; nextToRun hands the CPU to
	// idle only when that list is empty, so it is taken off the list and
	// left BLOCKED until then.
	if idle.ReadyLink.In() {
		ctx.ready.Remove(idle)
		idle.Status = thread.Blocked
	}
	ctx.mu.Unlock()
	return idle
}

// idleBody is the idle thread's entry point (spec.md §4.9): disable
// interrupts, block, then on wake, halt-until-interrupt.
func idleBody(ctx *Context) func(any) {
	return func(any) {
		for {
			ctx.Block()
			ctx.halt()
		}
	}
}

// halt is the Go stand-in for "halt-until-interrupt, atomically
// re-enabling interrupts with the halt": a blocking receive on haltWake,
// which every Tick call signals (see the haltWake field).
func (ctx *Context) halt() {
	<-ctx.haltWake
}

// Create allocates and starts a new thread (spec.md §4.4).
func (ctx *Context) Create(name string, priority int, entry func(any), aux any) (*thread.TCB, error) {
	if priority < thread.PriMin || priority > thread.PriMax {
		return nil, &kerrors.RangeError{Field: "priority", Value: priority, Min: thread.PriMin, Max: thread.PriMax}
	}

	ctx.mu.Lock()
	var parentNice int
	var parentRecentCPU int32
	if ctx.current != nil {
		parentNice = ctx.current.Nice
		parentRecentCPU = ctx.current.RecentCPU
	}
	ctx.mu.Unlock()

	t := ctx.reg.New(name, priority, entry, aux)
	if ctx.cfg.MLFQS {
		t.Nice = parentNice
		t.RecentCPU = parentRecentCPU
		for _, hook := range ctx.createHooks {
			hook(t)
		}
	}

	ctx.mu.Lock()
	ctx.reg.Register(t)
	ctx.mu.Unlock()

	go ctx.trampoline(t)

	ctx.Unblock(t)

	ctx.mu.Lock()
	preempt := ctx.current != nil && t.Priority > ctx.current.Priority
	ctx.mu.Unlock()
	if preempt {
		ctx.Yield()
	}

	kernellog.Get().Debug().Str("name", name).Int("priority", priority).Log("thread created")
	return t, nil
}

// trampoline is the Go stand-in for spec.md §4.4 step 3 ("push three stack
// frames so the first context switch lands in a trampoline that
// re-enables interrupts, calls entry_fn(aux), and on return calls exit"):
// it parks on the new thread's resume channel until first scheduled, runs
// the entry function, and calls Exit when (if) it returns.
func (ctx *Context) trampoline(t *thread.TCB) {
	<-t.ResumeChan()
	entry, aux := t.Entry()
	if entry != nil {
		entry(aux)
	}
	ctx.Exit()
}

// Block requires the calling goroutine to BE the current thread's own
// trampoline (spec.md §4.5: "requires interrupts OFF and non-interrupt
// context"). Sets current's status to BLOCKED and calls Schedule.
func (ctx *Context) Block() {
	ctx.mu.Lock()
	cur := ctx.current
	if cur.Status != thread.Running {
		ctx.mu.Unlock()
		kerrors.Fatal("status", "block called on a thread that is not RUNNING")
		return
	}
	cur.Status = thread.Blocked
	ctx.schedule()
	ctx.mu.Unlock()
}

// Unblock requires t.Status == BLOCKED (spec.md §4.5). Safe to call from
// any context; never preempts the caller.
func (ctx *Context) Unblock(t *thread.TCB) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.unblockLocked(t)
}

func (ctx *Context) unblockLocked(t *thread.TCB) {
	if t.Status != thread.Blocked {
		kerrors.Fatal("status", "unblock called on a thread that is not BLOCKED")
		return
	}
	t.Status = thread.Ready
	ctx.ready.InsertOrdered(t, ReadyLess)
}

// UnblockLocked is Unblock, for callers that already hold the lock: package
// sleep's tick hook, invoked by Tick with ctx.mu already held (spec.md §5: "unblock may be called from
// interrupt context; it disables interrupts internally" — here, "already
// disabled" for the one caller that runs inside Tick itself).
func (ctx *Context) UnblockLocked(t *thread.TCB) { ctx.unblockLocked(t) }

// Yield is the voluntary/tick-driven variant (spec.md §4.6): inserts
// current at the end of its equal-priority run and reschedules. If the
// caller is the wakeup thread, it returns without re-queueing — the
// wakeup thread self-blocks instead (see package sleep).
func (ctx *Context) Yield() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	cur := ctx.current
	if cur == ctx.wakeup {
		return
	}
	if cur == ctx.idle {
		// idle never sits on the ready list, but it must still give up
		// RUNNING before schedule() hands RUNNING to whatever runs next
		// (original_source/.../thread.c:453-461 sets THREAD_READY even for
		// idle) — otherwise two TCBs would briefly both read RUNNING,
		// breaking the "exactly one RUNNING thread" invariant (spec.md §8
		// property 3). idle's own body never calls Yield, so this path is
		// currently unreached, but schedule() must not be called with cur
		// left RUNNING regardless.
		cur.Status = thread.Ready
		ctx.schedule()
		return
	}
	cur.Status = thread.Ready
	ctx.ready.InsertOrdered(cur, ReadyLess)
	ctx.schedule()
}

// YieldHead is called when a priority update demotes the running thread
// below the ready-queue head (spec.md §4.6): inserts current at the front
// of its equal-priority run.
func (ctx *Context) YieldHead() {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	cur := ctx.current
	cur.Status = thread.Ready
	ctx.ready.InsertOrdered(cur, readyLessHead)
	ctx.schedule()
}

// Exit removes the thread from the all-threads list, sets DYING, and
// schedules away (spec.md §4.7). Unlike the original's switch_threads,
// swtch.Switch doesn't park the exiting goroutine when prevExiting is set
// (swtch/swtch.go) — it returns immediately instead. schedule() therefore
// returns here too, and Exit returns to trampoline, which then returns and
// lets this goroutine terminate: that termination, not a GC'd struct, is
// this port's "free the page" (spec.md §4.8 step 3) — the thread's one
// goroutine stack is the resource being freed, and it's freed by the
// goroutine ending, not by any value going out of scope.
func (ctx *Context) Exit() {
	ctx.mu.Lock()
	cur := ctx.current
	ctx.reg.Unregister(cur)
	cur.Status = thread.Dying
	kernellog.Get().Debug().Str("name", cur.Name).Log("thread exiting")
	ctx.schedule()
	ctx.mu.Unlock()
}

// schedule is Schedule's lock-held implementation (spec.md §4.8). Must be
// called with ctx.mu held and cur.Status already set to its post-switch
// value (BLOCKED, READY, or DYING). Always returns with ctx.mu held.
//
// Go translation note: real schedule_tail runs "on next's stack", once
// switch_threads returns control there — a trick this module's
// goroutine-per-thread model can't reproduce (Switch's blocking receive
// resumes the calling goroutine's own frozen call stack, not next's). So
// this does next's post-switch bookkeeping itself, on prev's goroutine,
// while the lock is still held and both prev/next are known correctly —
// equivalent in effect, since nothing downstream of this point touches
// next before it actually runs. See scheduleTail's removal: there's no
// separate "tail" step here, because there's no second goroutine to run
// one on.
func (ctx *Context) schedule() {
	prev := ctx.current
	next := ctx.nextToRun()
	ctx.ticksSinceYield = 0

	if next == prev {
		return
	}

	ctx.current = next
	next.Status = thread.Running
	swtch.ActivateAddressSpace(next)
	exiting := prev.Status == thread.Dying

	// Release the critical section before handing off: Switch parks this
	// goroutine on its own channel (unless exiting), and the thread it
	// wakes may immediately need the lock itself (e.g. to Block right
	// away, as the wakeup thread's body does). Holding a single process-
	// wide mutex across that park would deadlock the very thread we just
	// switched to. Re-acquired unconditionally below: either once this
	// goroutine is itself resumed again later (the common case), or
	// immediately, for an exiting thread's goroutine, which then releases
	// it in Exit and returns through trampoline, ending the goroutine.
	ctx.mu.Unlock()
	swtch.Switch(prev, next, exiting)
	ctx.mu.Lock()
}

// nextToRun pops the ready-list head, or returns idle if empty (spec.md
// §4.8 step 1).
func (ctx *Context) nextToRun() *thread.TCB {
	if next := ctx.ready.Front(); next != nil {
		ctx.ready.Remove(next)
		return next
	}
	return ctx.idle
}

// Freeing a DYING predecessor's TCB page (spec.md §4.8 step 3): Exit
// already unregistered cur from the all-threads list before calling
// schedule, and once Exit returns (see Exit's doc comment), trampoline
// returns and that thread's goroutine terminates — the goroutine stack is
// the resource actually being freed here. Once the goroutine is gone and
// no list still holds a pointer to its TCB, the TCB itself becomes
// unreferenced and the garbage collector reclaims it like any other value.

// Tick is the timer hook (spec.md §5, §4.8's quantum policy): called once
// per hardware timer interrupt with the current monotonic tick count.
// Returns true if a yield should be performed once the caller reaches its
// own safe point (spec.md: "request yield-on-return").
func (ctx *Context) Tick(currentTick uint64) bool {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	ctx.currentTick = currentTick
	ctx.ticksSinceYield++

	// original_source/.../threads/thread.c's tick accounting: idle -> idle,
	// a userprog thread (pagedir != NULL) -> user, everything else
	// (including the wakeup thread and any other kernel thread) -> kernel.
	// This module has no userland thread marker, so userTicks never
	// increments; every non-idle thread, wakeup included, counts as kernel.
	switch ctx.current {
	case ctx.idle:
		ctx.idleTicks++
	default:
		ctx.kernelTicks++
	}

	select {
	case ctx.haltWake <- struct{}{}:
	default:
	}

	for _, hook := range ctx.tickHooks {
		hook(ctx, currentTick)
	}

	yield := ctx.ticksSinceYield >= ctx.cfg.TimeSlice
	if head := ctx.ready.Front(); head != nil && ctx.current != nil && head.Priority > ctx.current.Priority {
		yield = true
	}
	return yield
}

// CurrentTick returns the last tick count observed by Tick.
func (ctx *Context) CurrentTick() uint64 {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.currentTick
}

// Stats is the read-only statistics surface spec.md §6 describes.
type Stats struct {
	IdleTicks   uint64
	KernelTicks uint64
	UserTicks   uint64
}

// Stats returns a snapshot of the tick counters.
func (ctx *Context) Stats() Stats {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return Stats{IdleTicks: ctx.idleTicks, KernelTicks: ctx.kernelTicks, UserTicks: ctx.userTicks}
}
