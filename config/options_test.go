package config_test

import (
	"testing"

	"github.com/joeycumines/go-schedcore/config"
	"github.com/joeycumines/go-schedcore/thread"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := config.Resolve()
	require.False(t, cfg.MLFQS)
	require.Equal(t, thread.TimerFreq, cfg.TimerFreq)
	require.Equal(t, thread.TimeSlice, cfg.TimeSlice)
}

func TestOptionsApply(t *testing.T) {
	cfg := config.Resolve(config.WithMLFQS(), config.WithTimerFreq(50), config.WithTimeSlice(8))
	require.True(t, cfg.MLFQS)
	require.Equal(t, 50, cfg.TimerFreq)
	require.Equal(t, 8, cfg.TimeSlice)
}

func TestNilOptionIgnored(t *testing.T) {
	require.NotPanics(t, func() {
		config.Resolve(nil, config.WithMLFQS())
	})
}
