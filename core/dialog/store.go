package dialog

import (
	"context"
	"sync"
	"time"

	"github.com/jeanzhou31/slackattack/core/chat"
)

// Store keeps live sessions, at most one per key.
type Store interface {
	Get(key chat.Key) (*Session, bool)
	Put(s *Session)
	// Remove deletes the session for key only if it is still the one with id.
	Remove(key chat.Key, id string)
	Active(key chat.Key) bool
	Len() int
	// Idle lists sessions not touched since before.
	Idle(before time.Time) []*Session
	// Intents counts live sessions per intent.
	Intents() map[string]int
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[chat.Key]*Session
}

// NewMemoryStore constructs the in-process session store.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[chat.Key]*Session),
	}
}

func (m *memoryStore) Get(key chat.Key) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[key]
	return s, ok
}

func (m *memoryStore) Put(s *Session) {
	if s == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Key] = s
}

func (m *memoryStore) Remove(key chat.Key, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok && s.ID == id {
		delete(m.sessions, key)
	}
}

func (m *memoryStore) Active(key chat.Key) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[key]
	return ok
}

func (m *memoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *memoryStore) Idle(before time.Time) []*Session {
	m.mu.RLock()
	candidates := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		candidates = append(candidates, s)
	}
	m.mu.RUnlock()

	// session locks are taken outside the store lock
	var idle []*Session
	for _, s := range candidates {
		if s.UpdatedAt().Before(before) {
			idle = append(idle, s)
		}
	}
	return idle
}

func (m *memoryStore) Intents() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int)
	for _, s := range m.sessions {
		out[s.Intent]++
	}
	return out
}

// Summary is the record of a finished session.
type Summary struct {
	SessionID string
	ChatID    int64
	UserID    int64
	Intent    string
	Outcome   Outcome
	Slots     map[string]string
	Notes     map[string]string
	Steps     int
	Retries   int
	StartedAt time.Time
	EndedAt   time.Time
}

// Recorder persists finished sessions.
type Recorder interface {
	Record(ctx context.Context, sum Summary) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, sum Summary) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, sum Summary) error {
	return f(ctx, sum)
}
