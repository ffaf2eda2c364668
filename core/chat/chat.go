// Package chat holds the transport-neutral message types shared by the
// intent router, the dialog engine and the transports.
package chat

import (
	"context"
	"fmt"
	"strings"
)

// Scope describes how an inbound message addressed the bot.
type Scope string

const (
	// ScopeDirectMessage is a one-to-one conversation with the bot.
	ScopeDirectMessage Scope = "direct_message"
	// ScopeDirectMention is a group message that starts with (or replies to) the bot.
	ScopeDirectMention Scope = "direct_mention"
	// ScopeMention is a group message that mentions the bot somewhere in the text.
	ScopeMention Scope = "mention"
	// ScopeAmbient is a group message that does not address the bot at all.
	ScopeAmbient Scope = "ambient"
)

// Addressed reports whether the message was explicitly aimed at the bot.
func (s Scope) Addressed() bool {
	switch s {
	case ScopeDirectMessage, ScopeDirectMention, ScopeMention:
		return true
	}
	return false
}

// Event is a single inbound message.
type Event struct {
	ChatID     int64
	SenderID   int64
	SenderName string
	Text       string
	Scope      Scope
}

// Key identifies the conversation slot of the sender in a chat.
type Key struct {
	ChatID int64
	UserID int64
}

// String renders the key as chat:user for logs and storage.
func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.ChatID, k.UserID)
}

// KeyOf returns the session key for an event.
func KeyOf(ev Event) Key {
	return Key{ChatID: ev.ChatID, UserID: ev.SenderID}
}

// Attachment is a structured reply card.
type Attachment struct {
	Title    string
	Text     string
	Link     string
	ImageURL string
	// Color is a hex accent such as "#7CD197"; transports without colored
	// cards may ignore it.
	Color string
}

// Empty reports whether the attachment carries nothing to render.
func (a Attachment) Empty() bool {
	return strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.Text) == "" &&
		a.Link == "" && a.ImageURL == ""
}

// Outbox delivers replies to the chat an event came from.
// Sends are fire-and-forget: delivery failures are the transport's concern.
type Outbox interface {
	Send(ctx context.Context, text string)
	SendAttachment(ctx context.Context, att Attachment)
	// Ask sends a prompt; choices are optional quick replies.
	Ask(ctx context.Context, text string, choices []string)
}
