package sender

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatcherKeepsPerChatOrder(t *testing.T) {
	d := NewDispatcher(Options{Workers: 4, QueueSize: 64})

	var mu sync.Mutex
	got := map[int64][]int{}
	for i := 0; i < 20; i++ {
		for _, chatID := range []int64{1, 2, -100123} {
			chatID, i := chatID, i
			err := d.Enqueue(context.Background(), chatID, "send.text", "sendMessage", func() error {
				mu.Lock()
				got[chatID] = append(got[chatID], i)
				mu.Unlock()
				return nil
			})
			require.NoError(t, err)
		}
	}
	d.Close()

	for _, chatID := range []int64{1, 2, -100123} {
		require.Len(t, got[chatID], 20)
		for i, v := range got[chatID] {
			require.Equal(t, i, v, "chat %d out of order", chatID)
		}
	}
	require.Equal(t, uint64(60), d.SentCount())
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	err := d.Enqueue(context.Background(), 5, "send.text", "sendMessage", func() error {
		calls++
		if calls < 3 {
			return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
		}
		return nil
	})
	require.NoError(t, err)
	d.Close()

	require.Equal(t, 3, calls)
	require.Zero(t, d.ErrorCount())
}

func TestDispatcherCountsPermanentFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	calls := 0
	require.NoError(t, d.Enqueue(context.Background(), 5, "send.text", "sendMessage", func() error {
		calls++
		return errors.New("telegram: chat not found (400)")
	}))
	d.Close()

	require.Equal(t, 1, calls)
	require.Equal(t, uint64(1), d.ErrorCount())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()
	err := d.Enqueue(context.Background(), 1, "send.text", "sendMessage", func() error { return nil })
	require.ErrorIs(t, err, ErrQueueClosed)
	require.Error(t, d.Enqueue(context.Background(), 1, "x", "", nil))
}

func TestSanitizeAndClassify(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:ABC-def_ghi/sendMessage": dial tcp: timeout`)
	require.NotContains(t, sanitizeErrorMessage(err), "ABC-def_ghi")
	require.Equal(t, "http_4xx", classifyError(errors.New("telegram: Bad Request: chat not found (400)")))
	require.Equal(t, "timeout", classifyError(context.DeadlineExceeded))
	require.Equal(t, "dial", classifyError(&net.OpError{Op: "dial", Err: errors.New("refused")}))
}
