package dialog

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeanzhou31/slackattack/core/chat/chattest"
)

func TestJanitorSweep(t *testing.T) {
	ctx := context.Background()
	var now atomic.Int64
	now.Store(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	eng := NewEngine(nil, WithClock(func() time.Time { return time.Unix(0, now.Load()) }))
	lookups := 0
	_, err := eng.Start(ctx, testKey, "pets", petFlow(&lookups), &chattest.Outbox{})
	require.NoError(t, err)

	j := NewJanitor(eng, time.Minute, time.Hour)
	require.Zero(t, j.Sweep(ctx))

	now.Add(int64(2 * time.Minute))
	require.Equal(t, 1, j.Sweep(ctx))
	require.False(t, eng.Active(testKey))
}

func TestJanitorLoop(t *testing.T) {
	ctx := context.Background()
	var now atomic.Int64
	now.Store(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	eng := NewEngine(nil, WithClock(func() time.Time { return time.Unix(0, now.Load()) }))
	lookups := 0
	_, err := eng.Start(ctx, testKey, "pets", petFlow(&lookups), &chattest.Outbox{})
	require.NoError(t, err)
	now.Add(int64(time.Hour))

	j := NewJanitor(eng, time.Minute, 5*time.Millisecond)
	j.Start(ctx)
	j.Start(ctx)
	require.Eventually(t, func() bool { return !eng.Active(testKey) }, time.Second, 5*time.Millisecond)
	j.Stop()
	j.Stop()
}

func TestJanitorDisabled(t *testing.T) {
	j := NewJanitor(NewEngine(nil), 0, time.Millisecond)
	j.Start(context.Background())
	j.Stop()
}
