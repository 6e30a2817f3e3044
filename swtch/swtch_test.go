package swtch_test

import (
	"testing"

	"github.com/joeycumines/go-schedcore/swtch"
	"github.com/joeycumines/go-schedcore/thread"
	"github.com/stretchr/testify/require"
)

func TestSwitchHandsOffAndReturns(t *testing.T) {
	reg := thread.NewRegistry()
	a := reg.New("a", thread.PriDefault, func(any) {}, nil)
	b := reg.New("b", thread.PriDefault, func(any) {}, nil)

	var order []string
	done := make(chan struct{})

	go func() {
		<-b.ResumeChan()
		order = append(order, "b")
		swtch.Switch(b, a, false)
	}()

	go func() {
		order = append(order, "a-before")
		swtch.Switch(a, b, false)
		order = append(order, "a-after")
		close(done)
	}()

	<-done
	require.Equal(t, []string{"a-before", "b", "a-after"}, order)
}

func TestSwitchExitingDoesNotPark(t *testing.T) {
	reg := thread.NewRegistry()
	a := reg.New("a", thread.PriDefault, func(any) {}, nil)
	b := reg.New("b", thread.PriDefault, func(any) {}, nil)

	bWoke := make(chan struct{})
	go func() {
		<-b.ResumeChan()
		close(bWoke)
	}()

	// prevExiting=true: Switch must return without blocking on a's chan.
	returned := make(chan struct{})
	go func() {
		swtch.Switch(a, b, true)
		close(returned)
	}()

	<-bWoke
	<-returned
}

func TestActivateAddressSpaceNoop(t *testing.T) {
	reg := thread.NewRegistry()
	a := reg.New("a", thread.PriDefault, func(any) {}, nil)
	require.NotPanics(t, func() { swtch.ActivateAddressSpace(a) })
}
