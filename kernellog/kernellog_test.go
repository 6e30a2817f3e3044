package kernellog_test

import (
	"testing"

	"github.com/joeycumines/go-schedcore/kernellog"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerIsDisabledAndNonNil(t *testing.T) {
	logger := kernellog.Get()
	require.NotNil(t, logger)
	require.Equal(t, logiface.LevelDisabled, logger.Level())
}

func TestSetLoggerRoundTrip(t *testing.T) {
	custom := kernellog.NewStderrLogger(logiface.LevelInformational)
	kernellog.SetLogger(custom)
	defer kernellog.SetLogger(kernellog.NewStderrLogger(logiface.LevelDisabled))

	require.Equal(t, custom, kernellog.Get())
	require.Equal(t, logiface.LevelInformational, kernellog.Get().Level())
}

func TestDumpTCB(t *testing.T) {
	out := kernellog.DumpTCB(struct{ Name string }{Name: "idle"})
	require.Contains(t, out, "idle")
}
