package thread

import (
	"sync"

	"github.com/joeycumines/go-schedcore/fp"
	"github.com/joeycumines/go-schedcore/kerrors"
	"github.com/joeycumines/go-schedcore/olist"
)

// Priority and nice bounds, per spec.md §3.
const (
	PriMin     = 0
	PriMax     = 63
	PriDefault = 31

	NiceMin = -20
	NiceMax = 20
	NiceDefault = 0
)

// TimeSlice is the MLFQ/static quantum, in ticks (spec.md §4.8).
const TimeSlice = 4

// TimerFreq is the number of ticks per second the timer driver fires at
// (spec.md §4.11, "once per second (every TIMER_FREQ ticks)").
const TimerFreq = 100

// magic is the sentinel value written into every TCB at creation and
// checked whenever the thread is looked up, to detect kernel-stack
// overflow (spec.md §3, §7).
const magic = 0xc0ffee42

// Status is the lifecycle state of a thread (spec.md §3).
type Status int

const (
	Blocked Status = iota
	Ready
	Running
	Dying
)

func (s Status) String() string {
	switch s {
	case Blocked:
		return "BLOCKED"
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Dying:
		return "DYING"
	default:
		return "UNKNOWN"
	}
}

// TCB is a thread control block: the record of one schedulable execution.
//
// Go translation notes (see SPEC_FULL.md): StackTop, the raw stack
// pointer of the original design, is realized here as resumeCh, a
// rendezvous channel the scheduler's context-switch primitive (package
// swtch) parks the owning goroutine on and wakes it through; the TCB is
// otherwise a direct port of spec.md §3's attribute table.
type TCB struct {
	ID   uint64
	Name string

	Status Status

	Priority int
	Nice     int
	RecentCPU fp.Value

	// SleepEndTick is the absolute tick this thread must wake at; 0 if the
	// thread is not sleeping.
	SleepEndTick uint64

	// ReadyLink, SleepLink, AllLink are this TCB's intrusive membership
	// hooks into the ready list, sleep queue, and all-threads registry,
	// respectively. A TCB is a member of at most one of {ready, sleep} at
	// any time (spec.md §3 invariants).
	ReadyLink olist.Link[TCB]
	SleepLink olist.Link[TCB]
	AllLink   olist.Link[TCB]

	magic uint32

	// resumeCh is the Go-native stand-in for "current kernel stack
	// pointer": the channel the context-switch primitive parks this
	// thread's goroutine on, and sends to in order to resume it. Buffered
	// to size 1 so a resume signal sent before the goroutine parks is not
	// lost (mirrors how a real switch_threads leaves the incoming
	// thread's state ready to resume regardless of exactly when it next
	// looks).
	resumeCh chan struct{}

	// entry and aux are the thread's entry point and argument, run by the
	// trampoline goroutine started in Create. Exit status/cleanup is
	// managed by the scheduler core (package sched), not here.
	entry func(aux any)
	aux   any
}

// CheckMagic verifies the sentinel is intact, per spec.md §7 ("Stack
// overflow — detected on next current_thread() access via magic"). A
// mismatch is fatal.
func (t *TCB) CheckMagic() error {
	if t.magic != magic {
		return kerrors.Fatal("magic", "thread stack overflow detected")
	}
	return nil
}

// ResumeChan returns the channel package swtch parks/wakes this thread's
// goroutine through. It is exported only to swtch, by convention (no
// internal/ boundary is warranted for a single-field accessor pair in a
// module this size), and must not be used by any other package.
func (t *TCB) ResumeChan() chan struct{} {
	return t.resumeCh
}

// Entry returns the thread's entry function and argument, consumed
// exactly once by the trampoline goroutine Create starts.
func (t *TCB) Entry() (func(aux any), any) {
	return t.entry, t.aux
}

// newTCB allocates a zeroed TCB (spec.md §4.4 step 1: "Allocate a zeroed
// page; the TCB lives at its base").
func newTCB(id uint64, name string, priority int, entry func(aux any), aux any) *TCB {
	return &TCB{
		ID:       id,
		Name:     name,
		Status:   Blocked,
		Priority: priority,
		magic:    magic,
		resumeCh: make(chan struct{}, 1),
		entry:    entry,
		aux:      aux,
	}
}

// Registry is the all-threads registry: it owns every live TCB and the
// monotonic id allocator protecting thread identity (spec.md §4.3).
type Registry struct {
	idMu  sync.Mutex
	nextID uint64

	// All is the all-threads list, iterated during MLFQ recomputation
	// (spec.md §4.3, §4.11). Callers mutate it only while holding the
	// scheduler's interrupt-disable discipline (see package sched); the
	// registry itself does no locking of All, by design — it is always
	// touched from inside a critical section already held by the
	// scheduler core, matching spec.md §5's "all scheduler queues are
	// protected by disabling interrupts during mutation".
	All *olist.List[TCB]
}

// NewRegistry constructs an empty registry, with the id allocator starting
// at 1 (spec.md §3: "Unique monotonically increasing identifier >= 1").
func NewRegistry() *Registry {
	return &Registry{
		nextID: 1,
		All:    olist.New(func(t *TCB) *olist.Link[TCB] { return &t.AllLink }),
	}
}

// AllocateID returns the next identifier, protected by a dedicated lock so
// concurrent creation is safe (spec.md §4.3).
func (r *Registry) AllocateID() uint64 {
	r.idMu.Lock()
	defer r.idMu.Unlock()
	id := r.nextID
	r.nextID++
	return id
}

// New allocates a new TCB (unregistered, BLOCKED) with the given name,
// priority, and entry point. Registration into All is the caller's (the
// scheduler's) job, since it must happen under the same interrupt-disable
// critical section as the rest of thread creation (spec.md §4.4 step 4).
func (r *Registry) New(name string, priority int, entry func(aux any), aux any) *TCB {
	id := r.AllocateID()
	return newTCB(id, name, priority, entry, aux)
}

// Register appends t to the all-threads list. Must be called with the
// scheduler's critical section held.
func (r *Registry) Register(t *TCB) {
	r.All.PushBack(t)
}

// Unregister removes t from the all-threads list. Must be called with the
// scheduler's critical section held.
func (r *Registry) Unregister(t *TCB) {
	r.All.Remove(t)
}
