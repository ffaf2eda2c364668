package telegram

import (
	"strings"
	"unicode"

	"github.com/jeanzhou31/slackattack/core/chat"

	tele "gopkg.in/telebot.v4"
)

// ScopeOf classifies how msg addresses the bot identified by me and
// returns the text with the bot's @mention removed.
func ScopeOf(msg *tele.Message, me *tele.User) (chat.Scope, string) {
	if msg == nil {
		return chat.ScopeAmbient, ""
	}
	text := strings.TrimSpace(msg.Text)
	if msg.Chat != nil && msg.Chat.Type == tele.ChatPrivate {
		return chat.ScopeDirectMessage, stripMention(text, username(me))
	}

	name := username(me)
	if name != "" {
		if rest, ok := cutLeadingMention(text, name); ok {
			return chat.ScopeDirectMention, rest
		}
	}
	if me != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil && msg.ReplyTo.Sender.ID == me.ID {
		return chat.ScopeDirectMention, stripMention(text, name)
	}
	if name != "" {
		if stripped := stripMention(text, name); stripped != text {
			return chat.ScopeMention, stripped
		}
	}
	return chat.ScopeAmbient, text
}

func username(me *tele.User) string {
	if me == nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimSpace(me.Username), "@")
}

// cutLeadingMention matches "@bot", "@bot:" or "@bot," at the start of text.
func cutLeadingMention(text, name string) (string, bool) {
	tag := "@" + name
	if len(text) < len(tag) || !strings.EqualFold(text[:len(tag)], tag) {
		return "", false
	}
	rest := text[len(tag):]
	if rest != "" && !boundary(rest) {
		return "", false
	}
	rest = strings.TrimLeftFunc(rest, func(r rune) bool {
		return unicode.IsSpace(r) || r == ':' || r == ','
	})
	return rest, true
}

// stripMention removes every whole-word "@bot" from text.
func stripMention(text, name string) string {
	if name == "" {
		return text
	}
	tag := "@" + strings.ToLower(name)
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		lower = text
	}
	var b strings.Builder
	found := false
	for i := 0; i < len(text); {
		if strings.HasPrefix(lower[i:], tag) && (i+len(tag) == len(text) || boundary(text[i+len(tag):])) {
			i += len(tag)
			found = true
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	if !found {
		return text
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func boundary(rest string) bool {
	for _, r := range rest {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	}
	return true
}
