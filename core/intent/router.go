// Package intent maps inbound messages to the handler that should answer
// them. Intents are matched by keyword in declaration order.
package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jeanzhou31/slackattack/core/chat"
	"github.com/jeanzhou31/slackattack/core/logger"
)

const component = "intent"

// Unrecognized is the reply to an addressed message no intent claims.
const Unrecognized = "Sorry, I'm not sure what you're saying!"

// ErrInvalidIntent is returned by New for malformed declarations.
var ErrInvalidIntent = errors.New("intent: invalid declaration")

// Handler answers a matched message, usually by starting a dialog session.
type Handler func(ctx context.Context, ev chat.Event, out chat.Outbox) error

// Intent is a keyword set bound to a handler.
type Intent struct {
	ID       string
	Keywords []string
	Handler  Handler
}

// Result tells what Route did with a message.
type Result int

const (
	ResultIgnored Result = iota
	ResultMatched
	ResultUnrecognized
)

func (r Result) String() string {
	switch r {
	case ResultIgnored:
		return "ignored"
	case ResultMatched:
		return "matched"
	case ResultUnrecognized:
		return "unrecognized"
	}
	return "unknown"
}

// Router holds intents in priority order. It is immutable after New.
type Router struct {
	intents  []Intent
	keywords []map[string]struct{}
}

// New validates intents and builds a router; earlier intents win ties.
func New(intents ...Intent) (*Router, error) {
	r := &Router{}
	seen := make(map[string]struct{}, len(intents))
	for _, in := range intents {
		id := strings.TrimSpace(in.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidIntent)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidIntent, id)
		}
		seen[id] = struct{}{}
		if in.Handler == nil {
			return nil, fmt.Errorf("%w: %q has no handler", ErrInvalidIntent, id)
		}
		set := make(map[string]struct{}, len(in.Keywords))
		for _, kw := range in.Keywords {
			for _, tok := range Tokens(kw) {
				set[tok] = struct{}{}
			}
		}
		if len(set) == 0 {
			return nil, fmt.Errorf("%w: %q has no keywords", ErrInvalidIntent, id)
		}
		in.ID = id
		r.intents = append(r.intents, in)
		r.keywords = append(r.keywords, set)
	}
	return r, nil
}

// MustNew is New that panics; for routers assembled at startup.
func MustNew(intents ...Intent) *Router {
	r, err := New(intents...)
	if err != nil {
		panic(err)
	}
	return r
}

// Intents returns the declared intent ids in priority order.
func (r *Router) Intents() []string {
	ids := make([]string, len(r.intents))
	for i, in := range r.intents {
		ids[i] = in.ID
	}
	return ids
}

// Match returns the first intent whose keyword set contains a token of text.
func (r *Router) Match(text string) (Intent, bool) {
	tokens := Tokens(text)
	if len(tokens) == 0 {
		return Intent{}, false
	}
	for i, set := range r.keywords {
		for _, tok := range tokens {
			if _, ok := set[tok]; ok {
				return r.intents[i], true
			}
		}
	}
	return Intent{}, false
}

// Route dispatches ev. Messages in ambient scope are never answered; an
// addressed message nothing matches gets exactly one Unrecognized reply.
func (r *Router) Route(ctx context.Context, ev chat.Event, out chat.Outbox) (Result, error) {
	if !ev.Scope.Addressed() {
		logger.Debug(ctx, component, "intent.ignored",
			slog.String("status", "ignored"),
			slog.String("scope", string(ev.Scope)),
		)
		return ResultIgnored, nil
	}

	in, ok := r.Match(ev.Text)
	if !ok {
		logger.Info(ctx, component, "intent.unrecognized",
			slog.String("status", "skip"),
			slog.String("scope", string(ev.Scope)),
		)
		out.Send(ctx, Unrecognized)
		return ResultUnrecognized, nil
	}

	logger.Info(ctx, component, "intent.match",
		slog.String("status", "ok"),
		slog.String("intent", in.ID),
		slog.String("scope", string(ev.Scope)),
	)
	if err := in.Handler(ctx, ev, out); err != nil {
		return ResultMatched, fmt.Errorf("intent %s: %w", in.ID, err)
	}
	return ResultMatched, nil
}

// Tokens lower-cases text and splits it into runs of letters and digits.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
