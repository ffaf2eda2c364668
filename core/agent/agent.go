// Package agent is the single entry point for inbound chat events.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jeanzhou31/slackattack/core/chat"
	"github.com/jeanzhou31/slackattack/core/dialog"
	"github.com/jeanzhou31/slackattack/core/intent"
	"github.com/jeanzhou31/slackattack/core/logger"
)

// Agent hands an event to the sender's live session when there is one and
// to the intent router otherwise.
type Agent struct {
	engine *dialog.Engine
	router *intent.Router
}

func New(engine *dialog.Engine, router *intent.Router) *Agent {
	return &Agent{engine: engine, router: router}
}

func (a *Agent) Engine() *dialog.Engine { return a.engine }

func (a *Agent) Router() *intent.Router { return a.router }

// Handle processes one inbound message. A live session consumes every
// message of its sender in that chat, whatever the scope.
func (a *Agent) Handle(ctx context.Context, ev chat.Event, out chat.Outbox) error {
	ev.Text = strings.TrimSpace(ev.Text)
	key := chat.KeyOf(ev)

	handled, err := a.engine.Respond(ctx, key, ev.Text, out)
	if err != nil {
		return fmt.Errorf("agent: respond %s: %w", key, err)
	}
	if handled {
		return nil
	}

	res, err := a.router.Route(ctx, ev, out)
	if err != nil {
		logger.Warn(ctx, "intent", "intent.handler_failed",
			slog.String("status", "fail"),
			slog.String("result", res.String()),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("agent: route: %w", err)
	}
	return nil
}
