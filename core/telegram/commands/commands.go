// Package commands defines slash commands and the built-in ones every
// deployment of the agent registers.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jeanzhou31/slackattack/core/chat"
	"github.com/jeanzhou31/slackattack/core/dialog"
	tghelpers "github.com/jeanzhou31/slackattack/core/telegram/helpers"
	"github.com/jeanzhou31/slackattack/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Reply answers with each line as its own message.
func Reply(lines ...string) tele.HandlerFunc {
	return func(c tele.Context) error {
		for _, line := range lines {
			if err := tghelpers.SendText(c, line); err != nil {
				return err
			}
		}
		return nil
	}
}

// Aborter ends a live conversation. *dialog.Engine implements it.
type Aborter interface {
	Abort(ctx context.Context, key chat.Key) error
}

// Cancel aborts the sender's conversation in this chat and confirms with
// done, or answers idle when nothing was running.
func Cancel(sessions Aborter, done, idle string) tele.HandlerFunc {
	return func(c tele.Context) error {
		chatID, userID := tghelpers.IDs(c)
		err := sessions.Abort(tghelpers.BuildContext(c), chat.Key{ChatID: chatID, UserID: userID})
		switch {
		case errors.Is(err, dialog.ErrNoSession):
			return tghelpers.SendText(c, idle)
		case err != nil:
			return err
		}
		return tghelpers.SendText(c, done, &tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
	}
}

// Stats is a snapshot of the runtime counters shown by /stats.
type Stats struct {
	Sessions int
	ByIntent map[string]int
	Sent     uint64
	Failed   uint64
}

// StatsHandler replies with the snapshot returned by collect.
func StatsHandler(collect func() Stats) tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, RenderStats(collect()))
	}
}

// RenderStats formats a snapshot as plain text.
func RenderStats(s Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Live sessions: %d", s.Sessions)
	intents := make([]string, 0, len(s.ByIntent))
	for name := range s.ByIntent {
		intents = append(intents, name)
	}
	sort.Strings(intents)
	for _, name := range intents {
		fmt.Fprintf(&b, "\n  %s: %d", name, s.ByIntent[name])
	}
	fmt.Fprintf(&b, "\nReplies sent: %d, failed: %d", s.Sent, s.Failed)
	return b.String()
}
