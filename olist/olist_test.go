package olist_test

import (
	"testing"

	"github.com/joeycumines/go-schedcore/olist"
	"github.com/stretchr/testify/require"
)

type elem struct {
	id   int
	pri  int
	link olist.Link[elem]
}

func newList() *olist.List[elem] {
	return olist.New(func(e *elem) *olist.Link[elem] { return &e.link })
}

func ids(l *olist.List[elem]) []int {
	var out []int
	l.Each(func(e *elem) { out = append(out, e.id) })
	return out
}

func TestPushBackFrontRemove(t *testing.T) {
	l := newList()
	a, b, c := &elem{id: 1}, &elem{id: 2}, &elem{id: 3}
	l.PushBack(a)
	l.PushBack(b)
	l.PushFront(c)
	require.Equal(t, []int{3, 1, 2}, ids(l))
	require.Equal(t, 3, l.Len())

	l.Remove(b)
	require.Equal(t, []int{3, 1}, ids(l))
	require.Equal(t, 2, l.Len())
	require.False(t, b.link.In())

	l.Remove(c)
	require.Equal(t, []int{1}, ids(l))
	require.Equal(t, a, l.Front())
	require.Equal(t, a, l.Back())
}

func TestInsertOrderedEndOfEqualPriorityRun(t *testing.T) {
	l := newList()
	less := func(a, b *elem) bool { return a.pri > b.pri } // strict: end-of-equal-run
	l.InsertOrdered(&elem{id: 1, pri: 10}, less)
	l.InsertOrdered(&elem{id: 2, pri: 10}, less)
	l.InsertOrdered(&elem{id: 3, pri: 20}, less)
	l.InsertOrdered(&elem{id: 4, pri: 10}, less)
	// 20 first, then the three pri-10s in insertion (FIFO) order.
	require.Equal(t, []int{3, 1, 2, 4}, ids(l))
}

func TestInsertOrderedHeadOfEqualPriorityRun(t *testing.T) {
	l := newList()
	less := func(a, b *elem) bool { return a.pri >= b.pri } // non-strict: head-of-equal-run
	l.InsertOrdered(&elem{id: 1, pri: 10}, less)
	l.InsertOrdered(&elem{id: 2, pri: 10}, less)
	require.Equal(t, []int{2, 1}, ids(l))
}

func TestSort(t *testing.T) {
	l := newList()
	l.PushBack(&elem{id: 1, pri: 5})
	l.PushBack(&elem{id: 2, pri: 30})
	l.PushBack(&elem{id: 3, pri: 10})
	l.Sort(func(a, b *elem) bool { return a.pri > b.pri })
	require.Equal(t, []int{2, 3, 1}, ids(l))
}

func TestMultipleListMembership(t *testing.T) {
	type multi struct {
		id int
		a  olist.Link[multi]
		b  olist.Link[multi]
	}
	listA := olist.New(func(m *multi) *olist.Link[multi] { return &m.a })
	listB := olist.New(func(m *multi) *olist.Link[multi] { return &m.b })

	m := &multi{id: 1}
	listA.PushBack(m)
	listB.PushBack(m)
	require.Equal(t, 1, listA.Len())
	require.Equal(t, 1, listB.Len())

	listA.Remove(m)
	require.Equal(t, 0, listA.Len())
	require.Equal(t, 1, listB.Len())
}
