// Package sender delivers outbound Telegram calls off the update goroutine.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeanzhou31/slackattack/core/logger"
)

const component = "tg.sender"

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull means the chat's shard had no room; the job was dropped.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options tune the dispatcher. Zero values take defaults.
type Options struct {
	// QueueSize bounds each shard's queue.
	QueueSize int
	// Workers is the number of shards. Jobs for one chat always land on the
	// same worker, so replies to a chat keep their order.
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	chatID   int64
	action   string
	endpoint string
	run      func() error
}

func (j job) attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	if j.chatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", j.chatID))
	}
	if rid := logger.RIDFrom(j.ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if id := logger.UpdateIDFrom(j.ctx); id != 0 {
		attrs = append(attrs, slog.Int("update_id", id))
	}
	if id := logger.UserIDFrom(j.ctx); id != 0 {
		attrs = append(attrs, slog.Int64("user_id", id))
	}
	return attrs
}

// Dispatcher runs outbound calls on per-chat shards with retries.
type Dispatcher struct {
	opts   Options
	shards []chan job
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	once   sync.Once

	errs atomic.Uint64
	sent atomic.Uint64
}

// NewDispatcher starts the shard workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts:   opts,
		shards: make([]chan job, opts.Workers),
	}
	d.wg.Add(opts.Workers)
	for i := range d.shards {
		d.shards[i] = make(chan job, opts.QueueSize)
		go d.drain(d.shards[i])
	}
	return d
}

// Enqueue schedules run on the shard owning chatID. run may be called more
// than once when the failure looks transient.
func (d *Dispatcher) Enqueue(ctx context.Context, chatID int64, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.shard(chatID) <- job{ctx: ctx, chatID: chatID, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shard(chatID int64) chan job {
	return d.shards[uint64(chatID)%uint64(len(d.shards))]
}

// ErrorCount returns the number of jobs that gave up.
func (d *Dispatcher) ErrorCount() uint64 { return d.errs.Load() }

// SentCount returns the number of jobs that eventually succeeded.
func (d *Dispatcher) SentCount() uint64 { return d.sent.Load() }

// Close stops accepting jobs and waits for the queues to drain.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		for _, ch := range d.shards {
			close(ch)
		}
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) drain(jobs <-chan job) {
	defer d.wg.Done()
	for j := range jobs {
		d.deliver(j)
	}
}

// deliver runs j until it succeeds, fails permanently, exhausts its
// retries or outlives MaxDuration.
func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	logger.Debug(j.ctx, component, "send.start", j.attrs()...)

	for attempt := 1; ; attempt++ {
		err := j.run()
		if err == nil {
			d.sent.Add(1)
			logDelivered(j, attempt, start)
			return
		}
		if !retryable(err) || attempt >= attempts {
			d.fail(j, err, attempt, start)
			return
		}

		delay := d.backoff(err, attempt)
		if werr := wait(ctx, delay); werr != nil {
			d.fail(j, werr, attempt, start)
			return
		}
		logger.Debug(j.ctx, component, "send.retry.backoff",
			append(j.attrs(), slog.Int("attempt", attempt), slog.Duration("delay", delay))...,
		)
	}
}

// backoff grows linearly and never undercuts a flood-control pause.
func (d *Dispatcher) backoff(err error, attempt int) time.Duration {
	delay := d.opts.RetryBackoff * time.Duration(attempt)
	if flood := floodWait(err); flood > delay {
		return flood
	}
	return delay
}

func (d *Dispatcher) fail(j job, err error, attempts int, start time.Time) {
	d.errs.Add(1)
	logger.Error(j.ctx, component, "send.fail",
		append(j.attrs(),
			slog.String("status", "fail"),
			slog.String("err", sanitizeErrorMessage(err)),
			slog.String("err_code", classifyError(err)),
			slog.Int("attempts", attempts),
			slog.Int64("elapsed_ms", logger.TookMS(start)),
		)...,
	)
}

func logDelivered(j job, attempt int, start time.Time) {
	attrs := append(j.attrs(), slog.Int64("elapsed_ms", logger.TookMS(start)))
	if attempt == 1 {
		logger.Debug(j.ctx, component, "send.success", attrs...)
		return
	}
	logger.Info(j.ctx, component, "send.retry.success", append(attrs, slog.Int("attempt", attempt))...)
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
