package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TickFunc is one unit of scheduled work.
type TickFunc func(ctx context.Context) error

// Loop runs a tick function on a fixed interval. The first tick fires
// immediately on Start; ticks run sequentially, never overlapping. A panic in
// a tick is recovered and logged so the loop keeps running.
type Loop struct {
	name     string
	interval time.Duration
	tick     TickFunc
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop builds a named loop; Start begins ticking.
func NewLoop(name string, interval time.Duration, tick TickFunc, logger *zap.Logger) *Loop {
	return &Loop{name: name, interval: interval, tick: tick, logger: logger}
}

// Start launches the loop goroutine. Calling Start on a running loop is a
// no-op.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx)
}

// Stop cancels the loop and waits for the in-flight tick to finish.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel = nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	l.RunTick(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.RunTick(ctx)
		}
	}
}

// RunTick executes one tick synchronously. Exposed so tests and startup code
// can drive the loop without the timer.
func (l *Loop) RunTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("tick panicked", zap.String("loop", l.name), zap.Any("panic", r))
		}
	}()
	if err := l.tick(ctx); err != nil {
		l.logger.Error("tick failed", zap.String("loop", l.name), zap.Error(err))
	}
}
