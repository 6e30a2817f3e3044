package thread_test

import (
	"testing"

	"github.com/joeycumines/go-schedcore/thread"
	"github.com/stretchr/testify/require"
)

func TestAllocateIDMonotonic(t *testing.T) {
	r := thread.NewRegistry()
	a := r.AllocateID()
	b := r.AllocateID()
	c := r.AllocateID()
	require.Equal(t, uint64(1), a)
	require.Equal(t, uint64(2), b)
	require.Equal(t, uint64(3), c)
}

func TestNewTCBDefaults(t *testing.T) {
	r := thread.NewRegistry()
	tcb := r.New("alice", thread.PriDefault, func(any) {}, nil)
	require.Equal(t, thread.Blocked, tcb.Status)
	require.Equal(t, thread.PriDefault, tcb.Priority)
	require.NoError(t, tcb.CheckMagic())
	require.NotNil(t, tcb.ResumeChan())
}

func TestRegisterUnregister(t *testing.T) {
	r := thread.NewRegistry()
	a := r.New("a", thread.PriDefault, func(any) {}, nil)
	b := r.New("b", thread.PriDefault, func(any) {}, nil)
	r.Register(a)
	r.Register(b)
	require.Equal(t, 2, r.All.Len())

	r.Unregister(a)
	require.Equal(t, 1, r.All.Len())
	require.Equal(t, b, r.All.Front())
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "BLOCKED", thread.Blocked.String())
	require.Equal(t, "READY", thread.Ready.String())
	require.Equal(t, "RUNNING", thread.Running.String())
	require.Equal(t, "DYING", thread.Dying.String())
}
