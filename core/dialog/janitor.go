package dialog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jeanzhou31/slackattack/core/logger"
)

// Janitor expires idle sessions on a fixed interval.
type Janitor struct {
	engine *Engine
	ttl    time.Duration
	every  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewJanitor sweeps engine every interval, ending sessions idle for ttl.
func NewJanitor(engine *Engine, ttl, every time.Duration) *Janitor {
	return &Janitor{engine: engine, ttl: ttl, every: every}
}

// Start launches the sweep loop. It is a no-op when ttl or interval is
// not positive, or when already running.
func (j *Janitor) Start(ctx context.Context) {
	if j.ttl <= 0 || j.every <= 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}
	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})
	go j.loop(ctx, j.done)
}

// Stop ends the loop and waits for it.
func (j *Janitor) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (j *Janitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(j.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one expiry pass and returns how many sessions ended.
func (j *Janitor) Sweep(ctx context.Context) int {
	n := j.engine.Expire(ctx, j.ttl)
	if n > 0 {
		logger.Info(ctx, component, "session.sweep",
			slog.String("status", "ok"),
			slog.Int("count", n),
			slog.Int("sessions", j.engine.Store().Len()),
		)
	}
	return n
}
