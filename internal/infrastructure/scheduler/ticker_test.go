package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestTickerRunsImmediatelyAndRepeats(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	tk := NewTicker(5 * time.Millisecond)
	require.NoError(t, tk.Start(context.Background(), func(time.Time) { runs.Add(1) }))

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, tk.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no job may run after Stop returns")
}

func TestTickerStartTwiceIsNoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	tk := NewTicker(time.Hour)
	job := func(time.Time) { runs.Add(1) }

	require.NoError(t, tk.Start(context.Background(), job))
	require.NoError(t, tk.Start(context.Background(), job))
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, tk.Stop(context.Background()))
	require.NoError(t, tk.Stop(context.Background()))
	assert.Equal(t, int32(1), runs.Load())
}

func TestTickerStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	tk := NewTicker(time.Hour)
	started := make(chan struct{}, 1)
	require.NoError(t, tk.Start(ctx, func(time.Time) { started <- struct{}{} }))

	<-started
	cancel()
	require.NoError(t, tk.Stop(context.Background()))
}
