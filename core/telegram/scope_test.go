package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeanzhou31/slackattack/core/chat"

	tele "gopkg.in/telebot.v4"
)

func TestScopeOf(t *testing.T) {
	me := &tele.User{ID: 42, Username: "jean_bot", IsBot: true}
	group := &tele.Chat{ID: -100, Type: tele.ChatSuperGroup}
	private := &tele.Chat{ID: 7, Type: tele.ChatPrivate}

	cases := []struct {
		name      string
		msg       *tele.Message
		wantScope chat.Scope
		wantText  string
	}{
		{"private", &tele.Message{Chat: private, Text: " I'm hungry "}, chat.ScopeDirectMessage, "I'm hungry"},
		{"leading mention", &tele.Message{Chat: group, Text: "@Jean_Bot: food please"}, chat.ScopeDirectMention, "food please"},
		{"reply to bot", &tele.Message{Chat: group, Text: "yes", ReplyTo: &tele.Message{Sender: me}}, chat.ScopeDirectMention, "yes"},
		{"inline mention", &tele.Message{Chat: group, Text: "hey @jean_bot play a game"}, chat.ScopeMention, "hey play a game"},
		{"longer handle", &tele.Message{Chat: group, Text: "@jean_bot2 hello"}, chat.ScopeAmbient, "@jean_bot2 hello"},
		{"ambient", &tele.Message{Chat: group, Text: "lunch anyone?"}, chat.ScopeAmbient, "lunch anyone?"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scope, text := ScopeOf(tc.msg, me)
			require.Equal(t, tc.wantScope, scope)
			require.Equal(t, tc.wantText, text)
		})
	}

	scope, _ := ScopeOf(&tele.Message{Chat: group, Text: "@jean_bot hi"}, nil)
	require.Equal(t, chat.ScopeAmbient, scope)
}
