package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunTickDrivesWorkSynchronously(t *testing.T) {
	var ticks atomic.Int64
	loop := NewLoop("poll", time.Hour, func(context.Context) error {
		ticks.Add(1)
		return nil
	}, zap.NewNop())

	loop.RunTick(context.Background())
	loop.RunTick(context.Background())
	assert.Equal(t, int64(2), ticks.Load())
}

func TestRunTickRecoversPanics(t *testing.T) {
	loop := NewLoop("rescan", time.Hour, func(context.Context) error {
		panic("boom")
	}, zap.NewNop())

	assert.NotPanics(t, func() {
		loop.RunTick(context.Background())
	})
}

func TestRunTickLogsErrorsWithoutPropagating(t *testing.T) {
	loop := NewLoop("digest", time.Hour, func(context.Context) error {
		return errors.New("transient")
	}, zap.NewNop())

	loop.RunTick(context.Background())
}

func TestStartRunsImmediatelyAndStopWaits(t *testing.T) {
	var ticks atomic.Int64
	loop := NewLoop("poll", time.Hour, func(context.Context) error {
		ticks.Add(1)
		return nil
	}, zap.NewNop())

	loop.Start(context.Background())
	loop.Stop()
	assert.GreaterOrEqual(t, ticks.Load(), int64(1))

	// Stop on a stopped loop is a no-op.
	loop.Stop()
}

func TestMemoryWatermarkColdStartLooksBack(t *testing.T) {
	store := NewMemoryWatermarkStore()

	mark, err := store.Load(context.Background())
	require.NoError(t, err)
	now := time.Now().UnixMilli()
	assert.Less(t, mark, now)
	assert.Greater(t, mark, now-int64((coldStartLookback+time.Minute)/time.Millisecond))

	require.NoError(t, store.Save(context.Background(), 42))
	mark, err = store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), mark)
}
