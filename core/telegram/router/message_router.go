package router

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jeanzhou31/slackattack/core/chat"
	tg "github.com/jeanzhou31/slackattack/core/telegram"
	tghelpers "github.com/jeanzhou31/slackattack/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Agent consumes inbound chat events. *agent.Agent implements it.
type Agent interface {
	Handle(ctx context.Context, ev chat.Event, out chat.Outbox) error
}

// MessageOptions wires the text route.
type MessageOptions struct {
	Agent Agent
	// Me returns the bot's own user once known; used for mention detection.
	Me       func() *tele.User
	Commands CommandRouteOptions
}

// MessageRoutes builds the handler for plain text updates. Slash commands
// telebot did not route itself (aliases, unknown casing) are resolved
// through the registry; everything else goes to the agent.
func MessageRoutes(reg *tg.Registry, opts MessageOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		msg := c.Message()
		if msg == nil {
			return nil
		}

		if reg != nil && strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
			if key, cmd, ok := reg.LookupCommand(msg.Text); ok && cmd.Handler != nil {
				return opts.Commands.wrap(key, cmd)(c)
			}
		}

		if opts.Agent == nil {
			logHandlerSummary(c, "message", start, "skip", nil)
			return nil
		}

		var me *tele.User
		if opts.Me != nil {
			me = opts.Me()
		}
		scope, text := tg.ScopeOf(msg, me)
		chatID, userID := tghelpers.IDs(c)
		ev := chat.Event{
			ChatID:     chatID,
			SenderID:   userID,
			SenderName: displayName(c.Sender()),
			Text:       text,
			Scope:      scope,
		}

		return handleWithSummary(c, "message", start, func() error {
			return opts.Agent.Handle(tghelpers.BuildContext(c), ev, tg.NewOutbox(c))
		}, slog.String("scope", string(scope)))
	}

	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}

func displayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	return u.Username
}
