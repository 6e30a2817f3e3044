package olist

// Link is an intrusive link embedded inside an element, anchoring that
// element's membership in one particular [List]. An element with three
// list memberships (e.g. ready/sleep/all) embeds three independent Link
// fields, one per list.
type Link[T any] struct {
	prev, next *T
	list       *List[T]
}

// In reports whether the element is currently a member of the list it was
// last inserted into (via this Link).
func (l *Link[T]) In() bool {
	return l.list != nil
}

// accessor extracts the Link anchoring an element's membership in a
// particular list.
type accessor[T any] func(*T) *Link[T]

// List is an intrusive doubly linked list over elements of type T, ordered
// however the caller's insert calls order it.
type List[T any] struct {
	link       accessor[T]
	head, tail *T
	len        int
}

// New constructs an empty List using link to locate each element's Link
// field for this list.
func New[T any](link accessor[T]) *List[T] {
	return &List[T]{link: link}
}

// Len returns the number of elements currently on the list.
func (l *List[T]) Len() int {
	return l.len
}

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool {
	return l.len == 0
}

// Front returns the first element, or nil if the list is empty.
func (l *List[T]) Front() *T {
	return l.head
}

// Back returns the last element, or nil if the list is empty.
func (l *List[T]) Back() *T {
	return l.tail
}

// Next returns the element after e on this list, or nil if e is the last
// element (or not on the list).
func (l *List[T]) Next(e *T) *T {
	return l.link(e).next
}

// Prev returns the element before e on this list, or nil if e is the first
// element (or not on the list).
func (l *List[T]) Prev(e *T) *T {
	return l.link(e).prev
}

// PushBack inserts e at the tail of the list in O(1).
func (l *List[T]) PushBack(e *T) {
	le := l.link(e)
	le.list = l
	le.next = nil
	le.prev = l.tail
	if l.tail != nil {
		l.link(l.tail).next = e
	} else {
		l.head = e
	}
	l.tail = e
	l.len++
}

// PushFront inserts e at the head of the list in O(1).
func (l *List[T]) PushFront(e *T) {
	le := l.link(e)
	le.list = l
	le.prev = nil
	le.next = l.head
	if l.head != nil {
		l.link(l.head).prev = e
	} else {
		l.tail = e
	}
	l.head = e
	l.len++
}

// Remove detaches e from the list in O(1). e must currently be a member of
// this list (the caller is responsible for that invariant; olist does not
// cross-check, matching the zero-allocation, trust-the-caller style of the
// rest of this scheduler core).
func (l *List[T]) Remove(e *T) {
	le := l.link(e)
	if le.prev != nil {
		l.link(le.prev).next = le.next
	} else {
		l.head = le.next
	}
	if le.next != nil {
		l.link(le.next).prev = le.prev
	} else {
		l.tail = le.prev
	}
	le.prev, le.next, le.list = nil, nil, nil
	l.len--
}

// InsertOrdered scans from the front for the first element cur for which
// less(elem, cur) is true, and inserts elem immediately before it (at the
// tail if no such element exists). This gives two distinct tie-breaking
// behaviours depending on how less is written:
//
//   - if less is strict ("elem.Priority > cur.Priority"), equal-priority
//     runs preserve insertion order and elem lands after all existing
//     equal-priority entries (round-robin / "end of equal-priority run").
//   - if less also fires on equality ("elem.Priority >= cur.Priority"),
//     elem lands before all existing equal-priority entries ("head of
//     equal-priority run"), as the preemptive-insert variants need.
func (l *List[T]) InsertOrdered(elem *T, less func(a, b *T) bool) {
	for cur := l.head; cur != nil; cur = l.link(cur).next {
		if less(elem, cur) {
			l.insertBefore(elem, cur)
			return
		}
	}
	l.PushBack(elem)
}

func (l *List[T]) insertBefore(elem, mark *T) {
	le := l.link(elem)
	lm := l.link(mark)
	le.list = l
	le.next = mark
	le.prev = lm.prev
	if lm.prev != nil {
		l.link(lm.prev).next = elem
	} else {
		l.head = elem
	}
	lm.prev = elem
	l.len++
}

// Sort reorders the list in place according to less, using a stable
// insertion sort (the lists this package serves rarely exceed a few dozen
// live threads, so the O(n^2) worst case never dominates; see the MLFQ
// priority-recompute call site for the one place this matters).
func (l *List[T]) Sort(less func(a, b *T) bool) {
	if l.len < 2 {
		return
	}
	elems := make([]*T, 0, l.len)
	for cur := l.head; cur != nil; cur = l.link(cur).next {
		elems = append(elems, cur)
	}
	for i := 1; i < len(elems); i++ {
		for j := i; j > 0 && less(elems[j], elems[j-1]); j-- {
			elems[j], elems[j-1] = elems[j-1], elems[j]
		}
	}
	l.head, l.tail, l.len = nil, nil, 0
	for _, e := range elems {
		l.link(e).list = nil
		l.PushBack(e)
	}
}

// Each calls fn for every element on the list, front to back. fn must not
// mutate this list's membership (insert/remove) during iteration; callers
// that need to remove while iterating should collect a slice first, the
// way [List.Sort] does.
func (l *List[T]) Each(fn func(*T)) {
	for cur := l.head; cur != nil; cur = l.link(cur).next {
		fn(cur)
	}
}
