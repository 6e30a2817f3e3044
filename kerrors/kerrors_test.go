package kerrors_test

import (
	"errors"
	"testing"

	"github.com/joeycumines/go-schedcore/kerrors"
	"github.com/stretchr/testify/require"
)

func TestRangeError(t *testing.T) {
	err := &kerrors.RangeError{Field: "priority", Value: 90, Min: 0, Max: 63}
	require.Contains(t, err.Error(), "priority=90")
}

func TestAllocError(t *testing.T) {
	err := &kerrors.AllocError{Name: "worker"}
	require.Contains(t, err.Error(), "worker")
}

func TestFatalErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &kerrors.FatalError{Invariant: "magic", Cause: cause}
	require.ErrorIs(t, err, cause)
}

func TestFatalInvokesHalt(t *testing.T) {
	old := kerrors.Halt
	defer func() { kerrors.Halt = old }()

	var captured error
	kerrors.Halt = func(err error) { captured = err }

	err := kerrors.Fatal("status", "thread not BLOCKED")
	require.Error(t, err)
	require.Equal(t, err, captured)
}
