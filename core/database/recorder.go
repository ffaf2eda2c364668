package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jeanzhou31/slackattack/core/dialog"
	"github.com/jeanzhou31/slackattack/core/logger"
)

// Conversation is one finished session as stored in the audit table.
type Conversation struct {
	ID        int64  `db:"id" json:"-"`
	SessionID string `db:"session_id" json:"session_id"`
	ChatID    int64  `db:"chat_id" json:"chat_id"`
	UserID    int64  `db:"user_id" json:"user_id"`
	Intent    string `db:"intent" json:"intent"`
	Outcome   string `db:"outcome" json:"outcome"`
	Slots     string `db:"slots" json:"-"`
	Notes     string `db:"notes" json:"-"`
	Steps     int    `db:"steps" json:"steps"`
	Retries   int    `db:"retries" json:"retries"`
	StartedMS int64  `db:"started_at" json:"started_at_ms"`
	EndedMS   int64  `db:"ended_at" json:"ended_at_ms"`
}

// Started returns the session start time.
func (c Conversation) Started() time.Time { return time.UnixMilli(c.StartedMS) }

// Ended returns the session end time.
func (c Conversation) Ended() time.Time { return time.UnixMilli(c.EndedMS) }

// SlotValues decodes the captured slots.
func (c Conversation) SlotValues() (map[string]string, error) { return decodeMap(c.Slots) }

// NoteValues decodes the notes left by the flow.
func (c Conversation) NoteValues() (map[string]string, error) { return decodeMap(c.Notes) }

// Recorder writes finished sessions to the conversations table. It
// implements dialog.Recorder.
type Recorder struct {
	db *sqlx.DB
}

var _ dialog.Recorder = (*Recorder)(nil)

func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

const insertConversation = `
INSERT INTO conversations
	(session_id, chat_id, user_id, intent, outcome, slots, notes, steps, retries, started_at, ended_at)
VALUES
	(:session_id, :chat_id, :user_id, :intent, :outcome, :slots, :notes, :steps, :retries, :started_at, :ended_at)`

// Record stores sum. A session recorded twice keeps its first row.
func (r *Recorder) Record(ctx context.Context, sum dialog.Summary) error {
	slots, err := encodeMap(sum.Slots)
	if err != nil {
		return fmt.Errorf("record %s: slots: %w", sum.SessionID, err)
	}
	notes, err := encodeMap(sum.Notes)
	if err != nil {
		return fmt.Errorf("record %s: notes: %w", sum.SessionID, err)
	}
	row := Conversation{
		SessionID: sum.SessionID,
		ChatID:    sum.ChatID,
		UserID:    sum.UserID,
		Intent:    sum.Intent,
		Outcome:   string(sum.Outcome),
		Slots:     slots,
		Notes:     notes,
		Steps:     sum.Steps,
		Retries:   sum.Retries,
		StartedMS: sum.StartedAt.UnixMilli(),
		EndedMS:   sum.EndedAt.UnixMilli(),
	}

	start := time.Now()
	_, err = r.db.NamedExecContext(ctx, insertConversation+" ON CONFLICT (session_id) DO NOTHING", row)
	took := logger.Took(start)
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "conversation.insert",
			slog.String("status", "fail"),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("record %s: %w", sum.SessionID, err)
	}
	logger.LogEvent(ctx, logger.DB, slog.LevelDebug, "conversation.insert",
		slog.String("status", "ok"),
		slog.String("outcome", row.Outcome),
		slog.Duration("duration", took),
	)
	return nil
}

// Recent returns up to limit conversations, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.Rebind(`
SELECT id, session_id, chat_id, user_id, intent, outcome, slots, notes, steps, retries, started_at, ended_at
FROM conversations
ORDER BY ended_at DESC, id DESC
LIMIT ?`)
	var out []Conversation
	if err := r.db.SelectContext(ctx, &out, query, limit); err != nil {
		return nil, fmt.Errorf("recent conversations: %w", err)
	}
	return out, nil
}

// Outcomes counts stored conversations by intent and outcome.
func (r *Recorder) Outcomes(ctx context.Context) (map[string]map[string]int, error) {
	var rows []struct {
		Intent  string `db:"intent"`
		Outcome string `db:"outcome"`
		N       int    `db:"n"`
	}
	const query = `SELECT intent, outcome, COUNT(*) AS n FROM conversations GROUP BY intent, outcome`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("conversation outcomes: %w", err)
	}
	out := make(map[string]map[string]int)
	for _, row := range rows {
		if out[row.Intent] == nil {
			out[row.Intent] = make(map[string]int)
		}
		out[row.Intent][row.Outcome] = row.N
	}
	return out, nil
}

func encodeMap(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMap(raw string) (map[string]string, error) {
	out := make(map[string]string)
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
