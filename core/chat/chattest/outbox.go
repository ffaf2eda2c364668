// Package chattest provides an in-memory chat.Outbox for tests.
package chattest

import (
	"context"
	"strings"
	"sync"

	"github.com/jeanzhou31/slackattack/core/chat"
)

// Kind tells which outbox primitive produced a reply.
type Kind string

const (
	KindText       Kind = "text"
	KindAttachment Kind = "attachment"
	KindPrompt     Kind = "prompt"
)

// Reply is one recorded outbound message.
type Reply struct {
	Kind       Kind
	Text       string
	Choices    []string
	Attachment chat.Attachment
}

// Outbox records every reply in order.
type Outbox struct {
	mu      sync.Mutex
	replies []Reply
}

// Send records a text reply.
func (o *Outbox) Send(_ context.Context, text string) {
	o.add(Reply{Kind: KindText, Text: text})
}

// SendAttachment records an attachment reply.
func (o *Outbox) SendAttachment(_ context.Context, att chat.Attachment) {
	o.add(Reply{Kind: KindAttachment, Attachment: att})
}

// Ask records a prompt.
func (o *Outbox) Ask(_ context.Context, text string, choices []string) {
	o.add(Reply{Kind: KindPrompt, Text: text, Choices: append([]string(nil), choices...)})
}

func (o *Outbox) add(r Reply) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replies = append(o.replies, r)
}

// Replies returns a copy of everything recorded so far.
func (o *Outbox) Replies() []Reply {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Reply(nil), o.replies...)
}

// Texts flattens replies into plain strings; attachments render as
// title, text and link joined by newlines.
func (o *Outbox) Texts() []string {
	replies := o.Replies()
	out := make([]string, 0, len(replies))
	for _, r := range replies {
		if r.Kind == KindAttachment {
			out = append(out, strings.Join([]string{r.Attachment.Title, r.Attachment.Text, r.Attachment.Link}, "\n"))
			continue
		}
		out = append(out, r.Text)
	}
	return out
}

// Last returns the most recent reply, or a zero Reply when nothing was sent.
func (o *Outbox) Last() Reply {
	replies := o.Replies()
	if len(replies) == 0 {
		return Reply{}
	}
	return replies[len(replies)-1]
}

// Prompts returns only the prompt texts, in order.
func (o *Outbox) Prompts() []string {
	var out []string
	for _, r := range o.Replies() {
		if r.Kind == KindPrompt {
			out = append(out, r.Text)
		}
	}
	return out
}

// Reset discards recorded replies.
func (o *Outbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.replies = nil
}

// Joined returns all texts joined by newlines, handy for Contains checks.
func (o *Outbox) Joined() string {
	return strings.Join(o.Texts(), "\n")
}
