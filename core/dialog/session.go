package dialog

import (
	"sync"
	"time"

	"github.com/jeanzhou31/slackattack/core/chat"
)

// Outcome describes how a session ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeDeclined  Outcome = "declined"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeFailed    Outcome = "failed"
	OutcomeWon       Outcome = "won"
	OutcomeQuit      Outcome = "quit"
	OutcomeAborted   Outcome = "aborted"
	OutcomeExpired   Outcome = "expired"
)

// Session is the state of one intent activation for one user.
type Session struct {
	ID        string
	Key       chat.Key
	Intent    string
	StartedAt time.Time

	// State holds flow-private data attached by Flow.Init.
	State any

	mu           sync.Mutex
	flow         *Flow
	index        int
	slots        map[string]string
	notes        map[string]string
	retries      int
	totalRetries int
	outcome      Outcome
	updatedAt    time.Time
	done         bool
}

func newSession(id string, key chat.Key, intent string, flow *Flow, now time.Time) *Session {
	return &Session{
		ID:        id,
		Key:       key,
		Intent:    intent,
		StartedAt: now,
		flow:      flow,
		slots:     make(map[string]string),
		notes:     make(map[string]string),
		updatedAt: now,
	}
}

// Flow returns the flow driving the session.
func (s *Session) Flow() *Flow { return s.flow }

// Index returns the position of the current step.
func (s *Session) Index() int { return s.index }

// Step returns the current step; ok is false once the list is exhausted.
func (s *Session) Step() (Step, bool) {
	if s.index < 0 || s.index >= len(s.flow.Steps) {
		return Step{}, false
	}
	return s.flow.Steps[s.index], true
}

// Retries returns how many times the current step was re-asked.
func (s *Session) Retries() int { return s.retries }

// Slot returns a captured value.
func (s *Session) Slot(name string) (string, bool) {
	v, ok := s.slots[name]
	return v, ok
}

// Value returns a captured value or "" when missing.
func (s *Session) Value(name string) string { return s.slots[name] }

// Slots returns a copy of all captured values.
func (s *Session) Slots() map[string]string {
	out := make(map[string]string, len(s.slots))
	for k, v := range s.slots {
		out[k] = v
	}
	return out
}

// Capture stores a slot value. Captured slots are never overwritten; it
// returns false when name already holds a value.
func (s *Session) Capture(name, value string) bool {
	if _, exists := s.slots[name]; exists {
		return false
	}
	s.slots[name] = value
	return true
}

// Note attaches a detail that ends up in the conversation record.
func (s *Session) Note(key, value string) {
	s.notes[key] = value
}

// SetOutcome labels how the session is about to end.
func (s *Session) SetOutcome(o Outcome) { s.outcome = o }

// Outcome returns the recorded outcome, if any.
func (s *Session) Outcome() Outcome { return s.outcome }

// UpdatedAt returns the time of the last state change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Done reports whether the session has ended.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Session) advance() {
	s.index++
	s.retries = 0
}

func (s *Session) repeat() {
	s.retries++
	s.totalRetries++
}

func (s *Session) summary(ended time.Time) Summary {
	notes := make(map[string]string, len(s.notes))
	for k, v := range s.notes {
		notes[k] = v
	}
	return Summary{
		SessionID: s.ID,
		ChatID:    s.Key.ChatID,
		UserID:    s.Key.UserID,
		Intent:    s.Intent,
		Outcome:   s.outcome,
		Slots:     s.Slots(),
		Notes:     notes,
		Steps:     s.index,
		Retries:   s.totalRetries,
		StartedAt: s.StartedAt,
		EndedAt:   ended,
	}
}
