package dialog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jeanzhou31/slackattack/core/chat"
	"github.com/jeanzhou31/slackattack/core/logger"
)

const component = "dialog"

// ErrNoSession is returned when a key has no live session.
var ErrNoSession = errors.New("dialog: no active session")

// Engine walks sessions through their flows. It never blocks waiting for
// input: asking a prompt returns control to the caller, and the next
// answer for the same key resumes the step that asked.
type Engine struct {
	store    Store
	recorder Recorder
	now      func() time.Time
	newID    func() string
}

// Option customises an Engine.
type Option func(*Engine)

// WithRecorder persists finished sessions.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// NewEngine builds an engine over store; a nil store gets an in-memory one.
func NewEngine(store Store, opts ...Option) *Engine {
	if store == nil {
		store = NewMemoryStore()
	}
	e := &Engine{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the session store.
func (e *Engine) Store() Store { return e.store }

// Active reports whether key has a live session.
func (e *Engine) Active(key chat.Key) bool { return e.store.Active(key) }

// Start opens a session for key running flow and enters its first step.
// A session already live for key is aborted first.
func (e *Engine) Start(ctx context.Context, key chat.Key, intent string, flow *Flow, out chat.Outbox) (*Session, error) {
	if flow == nil || len(flow.Steps) == 0 {
		return nil, ErrInvalidFlow
	}
	if prev, ok := e.store.Get(key); ok {
		e.terminate(ctx, prev, OutcomeAborted)
	}

	s := newSession(e.newID(), key, intent, flow, e.now())
	if flow.Init != nil {
		flow.Init(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e.store.Put(s)

	ctx = logger.WithSession(ctx, s.ID, intent)
	logger.Info(ctx, component, "session.start",
		slog.String("status", "ok"),
		slog.String("flow", flow.Name),
		slog.Int("steps", len(flow.Steps)),
	)
	e.enter(ctx, s, out)
	return s, nil
}

// Ask emits the prompt of the session's current step.
func (e *Engine) Ask(ctx context.Context, s *Session, out chat.Outbox) {
	st, ok := s.Step()
	if !ok || !st.Prompting() {
		return
	}
	logger.Debug(ctx, component, "step.ask",
		slog.String("step", st.ID),
		slog.Int("index", s.index),
		slog.Int("retries", s.retries),
	)
	out.Ask(ctx, st.Prompt, st.Choices)
}

// Respond feeds text to the live session for key as the answer to its
// current step. handled is false when no session is live.
func (e *Engine) Respond(ctx context.Context, key chat.Key, text string, out chat.Outbox) (bool, error) {
	s, ok := e.store.Get(key)
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false, nil
	}
	ctx = logger.WithSession(ctx, s.ID, s.Intent)

	st, ok := s.Step()
	if !ok || !st.Prompting() {
		// only reachable if a previous enter was interrupted
		e.finish(ctx, s, OutcomeFailed)
		return true, nil
	}

	branch := st.pick(text)
	tr := branch.Do(ctx, s, text, out)
	s.updatedAt = e.now()
	logger.Debug(ctx, component, "step.answer",
		slog.String("step", st.ID),
		slog.String("branch", branch.Name),
		slog.String("transition", tr.String()),
	)

	switch tr {
	case Next:
		s.advance()
		e.enter(ctx, s, out)
	case Repeat:
		s.repeat()
		e.Ask(ctx, s, out)
	default:
		e.finish(ctx, s, OutcomeCompleted)
	}
	return true, nil
}

// Abort ends the live session for key without further replies.
func (e *Engine) Abort(ctx context.Context, key chat.Key) error {
	s, ok := e.store.Get(key)
	if !ok {
		return ErrNoSession
	}
	e.terminate(ctx, s, OutcomeAborted)
	return nil
}

// Expire ends sessions idle for longer than ttl and returns how many ended.
func (e *Engine) Expire(ctx context.Context, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	n := 0
	for _, s := range e.store.Idle(e.now().Add(-ttl)) {
		if e.terminate(ctx, s, OutcomeExpired) {
			n++
		}
	}
	return n
}

func (e *Engine) terminate(ctx context.Context, s *Session, outcome Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.outcome = outcome
	e.finish(logger.WithSession(ctx, s.ID, s.Intent), s, outcome)
	return true
}

// enter runs auto steps until a prompt is asked or the session ends.
// Callers hold s.mu.
func (e *Engine) enter(ctx context.Context, s *Session, out chat.Outbox) {
	for {
		st, ok := s.Step()
		if !ok {
			e.finish(ctx, s, OutcomeCompleted)
			return
		}
		if st.Prompting() {
			e.Ask(ctx, s, out)
			return
		}

		tr := st.Run(ctx, s, "", out)
		s.updatedAt = e.now()
		logger.Debug(ctx, component, "step.run",
			slog.String("step", st.ID),
			slog.String("transition", tr.String()),
		)
		switch tr {
		case Next:
			s.advance()
		case Repeat:
			logger.Warn(ctx, component, "step.repeat_unsupported",
				slog.String("step", st.ID),
			)
			e.finish(ctx, s, OutcomeFailed)
			return
		default:
			e.finish(ctx, s, OutcomeCompleted)
			return
		}
	}
}

// finish removes the session and records it. fallback applies when no
// action labelled the outcome. Callers hold s.mu.
func (e *Engine) finish(ctx context.Context, s *Session, fallback Outcome) {
	if s.done {
		return
	}
	s.done = true
	if s.outcome == "" {
		s.outcome = fallback
	}
	ended := e.now()
	s.updatedAt = ended
	e.store.Remove(s.Key, s.ID)

	logger.Info(ctx, component, "session.end",
		slog.String("status", "ok"),
		slog.String("outcome", string(s.outcome)),
		slog.Int("steps", s.index),
		slog.Int("retries", s.totalRetries),
		slog.Duration("duration", ended.Sub(s.StartedAt)),
	)

	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, s.summary(ended)); err != nil {
		logger.Warn(ctx, component, "session.record_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}
