package policy

import (
	"github.com/joeycumines/go-schedcore/fp"
	"github.com/joeycumines/go-schedcore/kerrors"
	"github.com/joeycumines/go-schedcore/sched"
	"github.com/joeycumines/go-schedcore/thread"
	"golang.org/x/exp/constraints"
)

// clamp restricts v to [lo, hi]. Generic over any ordered type, the same
// role constraints.Ordered plays in catrate/ring.go's ring buffer.
func clamp[T constraints.Ordered](v, lo, hi T) T {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// recomputeInterval is the tick interval priority recomputation runs at
// under MLFQ (spec.md §4.11, "every 4 ticks").
const recomputeInterval = 4

// Policy owns the MLFQ-only system-wide load_avg (spec.md §3: a
// module-level singleton) and wires the MLFQ tick hook when configured.
// Static mode uses only the SetPriority method; the zero value is not
// usable, construct via New.
type Policy struct {
	ctx     *sched.Context
	loadAvg fp.Value
}

// New constructs a Policy bound to ctx. If ctx.Config().MLFQS is set, this
// registers the MLFQ tick hook; otherwise SetPriority runs in static mode
// and the hook is never installed (spec.md §4.11 only specifies per-tick
// behaviour "under MLFQ").
func New(ctx *sched.Context) *Policy {
	p := &Policy{ctx: ctx}
	if ctx.Config().MLFQS {
		ctx.AddTickHook(p.onTick)
		ctx.AddCreateHook(p.onCreate)
	}
	return p
}

// onCreate is the MLFQ create hook (spec.md §4.4 step 5: "recompute this
// thread's priority immediately"). t already has nice/recent_cpu inherited
// from its parent by the time this runs.
func (p *Policy) onCreate(t *thread.TCB) {
	recomputePriority(t)
}

// SetPriority changes the calling thread's own priority (spec.md §4.11,
// static mode). Real thread_set_priority in the design this mirrors only
// ever acts on the current thread — it has no priority-donation scheme
// that would let a blocked or ready thread's priority be changed remotely
// — so unlike the spec text's two-branch description ("if READY ... if
// RUNNING ..."), this targets Current() exclusively; the READY branch is
// unreachable for any caller of this API (see DESIGN.md).
//
// Under MLFQS this is a no-op (spec.md §4.11: "when enabled, set_priority
// is a no-op").
func (p *Policy) SetPriority(newPriority int) error {
	if newPriority < thread.PriMin || newPriority > thread.PriMax {
		return &kerrors.RangeError{Field: "priority", Value: newPriority, Min: thread.PriMin, Max: thread.PriMax}
	}
	if p.ctx.Config().MLFQS {
		return nil
	}

	p.ctx.Lock()
	cur := p.ctx.Current()
	cur.Priority = newPriority
	preempt := readyHeadAbove(p.ctx, newPriority)
	p.ctx.Unlock()

	if preempt {
		p.ctx.YieldHead()
	}
	return nil
}

// SetNice updates the calling thread's nice value, recomputes its priority
// from the new value, and self-yields if that demotes it below the ready
// list's head (spec.md §4.11, "set_nice(n)"). Valid in both static and
// MLFQ modes, matching the original design (nice is tracked regardless of
// mode; only MLFQ derives priority from it automatically thereafter).
func (p *Policy) SetNice(n int) error {
	if n < thread.NiceMin || n > thread.NiceMax {
		return &kerrors.RangeError{Field: "nice", Value: n, Min: thread.NiceMin, Max: thread.NiceMax}
	}

	p.ctx.Lock()
	cur := p.ctx.Current()
	cur.Nice = n
	p.recomputeRecentCPUOne(cur)
	recomputePriority(cur)
	preempt := readyHeadAbove(p.ctx, cur.Priority)
	p.ctx.Unlock()

	if preempt {
		p.ctx.YieldHead()
	}
	return nil
}

// readyHeadAbove reports whether the ready list's head strictly outranks
// priority. Must be called with the scheduler lock held.
func readyHeadAbove(ctx *sched.Context, priority int) bool {
	head := ctx.ReadyList().Front()
	return head != nil && head.Priority > priority
}

// GetLoadAvg returns 100 times the system load average, rounded to the
// nearest integer (spec.md §4.11).
func (p *Policy) GetLoadAvg() int {
	p.ctx.Lock()
	defer p.ctx.Unlock()
	return fp.ToIntNearest(fp.MulInt(p.loadAvg, 100))
}

// GetRecentCPU returns 100 times the calling thread's recent_cpu, rounded
// to the nearest integer (spec.md §4.11).
func (p *Policy) GetRecentCPU() int {
	p.ctx.Lock()
	defer p.ctx.Unlock()
	return fp.ToIntNearest(fp.MulInt(p.ctx.Current().RecentCPU, 100))
}

// onTick is the MLFQ tick hook (spec.md §4.11, "Each tick:"). Runs with
// ctx.mu held (Tick's caller).
func (p *Policy) onTick(ctx *sched.Context, tick uint64) {
	if cur := ctx.Current(); cur != nil && cur != ctx.Idle() {
		cur.RecentCPU = fp.AddInt(cur.RecentCPU, 1)
	}

	// Per-second load_avg/recent_cpu recompute runs before the 4-tick
	// priority recompute below, so that on a tick where both coincide
	// (TIMER_FREQ is a multiple of recomputeInterval) priority is derived
	// from the freshly recomputed recent_cpu, not the previous second's.
	if freq := uint64(ctx.Config().TimerFreq); freq > 0 && tick%freq == 0 {
		p.updateLoadAvg(ctx)
		p.recomputeAllRecentCPU(ctx)
	}

	if tick%recomputeInterval == 0 {
		p.recomputeAllPriorities(ctx)
	}
}

// recomputePriority derives t's priority from its recent_cpu and nice
// (spec.md §4.11): priority = PRI_MAX - round(recent_cpu/4) - nice*2,
// clamped to [PRI_MIN, PRI_MAX].
func recomputePriority(t *thread.TCB) {
	p := thread.PriMax - fp.ToIntNearest(fp.DivInt(t.RecentCPU, 4)) - t.Nice*2
	t.Priority = clamp(p, thread.PriMin, thread.PriMax)
}

// recomputeAllPriorities recomputes every non-idle, non-wakeup thread's
// priority (spec.md §4.11: "idle and wakeup threads are exempt"), then
// re-sorts the ready list, since the recompute can reorder threads already
// sitting on it.
func (p *Policy) recomputeAllPriorities(ctx *sched.Context) {
	idle, wakeup := ctx.Idle(), ctx.Wakeup()
	ctx.Registry().All.Each(func(t *thread.TCB) {
		if t == idle || t == wakeup {
			return
		}
		recomputePriority(t)
	})
	ctx.ReadyList().Sort(sched.ReadyLess)
}

// updateLoadAvg applies the exponential-moving-average update (spec.md
// §4.11): load_avg = (59/60)*load_avg + (1/60)*ready_count, where
// ready_count is the ready list's length plus one if the current thread
// is running (not idle).
func (p *Policy) updateLoadAvg(ctx *sched.Context) {
	readyCount := ctx.ReadyList().Len()
	if cur := ctx.Current(); cur != nil && cur != ctx.Idle() {
		readyCount++
	}

	fiftyNineSixtieths := fp.Div(fp.ToFP(59), fp.ToFP(60))
	oneSixtieth := fp.Div(fp.ToFP(1), fp.ToFP(60))
	p.loadAvg = fp.Add(fp.Mul(fiftyNineSixtieths, p.loadAvg), fp.MulInt(oneSixtieth, readyCount))
	if p.loadAvg < 0 {
		// load_avg is clamped >= 0 (spec.md §8 invariant 7); a negative
		// value can only arise from a ready_count of 0 compounded with
		// rounding, never a real measurement.
		p.loadAvg = 0
	}
}

// recomputeAllRecentCPU applies spec.md §9's corrected formula to every
// thread: recent_cpu = (2*load_avg / add_int(2*load_avg, 1)) * recent_cpu
// + nice. The spec.md §9 "observed bug" is using plain int addition in
// place of add_int for the "+1" term; add_int scales its integer operand
// into fixed point before adding, which a raw "+1" on the fixed-point
// numerator would not do, silently shrinking the denominator by a factor
// of f. fp.AddInt is used here specifically to avoid reintroducing it.
func (p *Policy) recomputeAllRecentCPU(ctx *sched.Context) {
	ctx.Registry().All.Each(func(t *thread.TCB) {
		p.recomputeRecentCPUOne(t)
	})
}

// recomputeRecentCPUOne applies the same per-thread formula
// recomputeAllRecentCPU uses, to a single thread — used by SetNice (spec.md
// §4.11: "set_nice(n) ... recomputes the caller's recent_cpu and priority"),
// which must not touch any other thread's recent_cpu.
func (p *Policy) recomputeRecentCPUOne(t *thread.TCB) {
	load := fp.MulInt(p.loadAvg, 2)
	denom := fp.AddInt(load, 1)
	coeff := fp.Div(load, denom)
	t.RecentCPU = fp.AddInt(fp.Mul(coeff, t.RecentCPU), t.Nice)
}
