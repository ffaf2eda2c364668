package telegram

import (
	"context"
	"log/slog"

	"github.com/jeanzhou31/slackattack/core/chat"
	"github.com/jeanzhou31/slackattack/core/logger"
	"github.com/jeanzhou31/slackattack/core/telegram/format"
	tghelpers "github.com/jeanzhou31/slackattack/core/telegram/helpers"
	"github.com/jeanzhou31/slackattack/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Outbox replies to the chat of one update. It implements chat.Outbox.
type Outbox struct {
	c tele.Context
}

var _ chat.Outbox = (*Outbox)(nil)

// NewOutbox binds an outbox to the update in c.
func NewOutbox(c tele.Context) *Outbox {
	return &Outbox{c: c}
}

func (o *Outbox) Send(ctx context.Context, text string) {
	if text == "" {
		return
	}
	o.report(ctx, "send.text", tghelpers.SendText(o.c, text))
}

// SendAttachment renders att as HTML; attachments with an image go out as
// a photo with the card as caption.
func (o *Outbox) SendAttachment(ctx context.Context, att chat.Attachment) {
	if att.Empty() {
		return
	}
	if att.ImageURL != "" {
		o.report(ctx, "send.photo", tghelpers.SendPhoto(o.c, att.ImageURL, format.Caption(att)))
		return
	}
	o.report(ctx, "send.attachment", tghelpers.SendHTML(o.c, format.Attachment(att)))
}

// Ask sends a prompt with choices as a one-time reply keyboard. In groups
// the keyboard is shown only to the sender.
func (o *Outbox) Ask(ctx context.Context, text string, choices []string) {
	markup := keyboard.Choices(choices)
	opts := &tele.SendOptions{ReplyMarkup: markup}
	if ch := o.c.Chat(); ch != nil && ch.Type != tele.ChatPrivate {
		markup.Selective = true
		opts.ReplyTo = o.c.Message()
	}
	o.report(ctx, "send.prompt", tghelpers.SendText(o.c, text, opts))
}

func (o *Outbox) report(ctx context.Context, action string, err error) {
	if err == nil {
		return
	}
	logger.Warn(ctx, "tg", "reply.failed",
		slog.String("status", "fail"),
		slog.String("action", action),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
}
