package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeanzhou31/slackattack/core/chat"
	"github.com/jeanzhou31/slackattack/core/chat/chattest"
	"github.com/jeanzhou31/slackattack/core/dialog"
	"github.com/jeanzhou31/slackattack/core/intent"
)

func newTestAgent() *Agent {
	engine := dialog.NewEngine(nil)
	echo := dialog.MustFlow("echo", nil,
		dialog.Capture("say", "Say something?", "said", func(s *dialog.Session) string {
			return "You said " + s.Value("said")
		}),
		dialog.Lookup("done", dialog.Say(dialog.End)),
	)
	router := intent.MustNew(intent.Intent{
		ID:       "echo",
		Keywords: []string{"echo"},
		Handler: func(ctx context.Context, ev chat.Event, out chat.Outbox) error {
			_, err := engine.Start(ctx, chat.KeyOf(ev), "echo", echo, out)
			return err
		},
	})
	return New(engine, router)
}

func TestHandleRoutesThenResumes(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent()
	out := &chattest.Outbox{}
	ev := chat.Event{ChatID: 1, SenderID: 2, Scope: chat.ScopeDirectMention}

	ev.Text = "  echo please "
	require.NoError(t, a.Handle(ctx, ev, out))
	require.True(t, a.Engine().Active(chat.KeyOf(ev)))

	// a session keeps listening to its user even without a mention
	ev.Text, ev.Scope = "help", chat.ScopeAmbient
	require.NoError(t, a.Handle(ctx, ev, out))
	require.False(t, a.Engine().Active(chat.KeyOf(ev)))
	require.Equal(t, []string{"Say something?", "You said help"}, out.Texts())
}

func TestHandleKeepsUsersApart(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent()
	alice := &chattest.Outbox{}
	bob := &chattest.Outbox{}

	require.NoError(t, a.Handle(ctx, chat.Event{ChatID: 1, SenderID: 10, Text: "echo", Scope: chat.ScopeMention}, alice))
	require.NoError(t, a.Handle(ctx, chat.Event{ChatID: 1, SenderID: 11, Text: "hello", Scope: chat.ScopeMention}, bob))

	require.Equal(t, []string{intent.Unrecognized}, bob.Texts())
	require.True(t, a.Engine().Active(chat.Key{ChatID: 1, UserID: 10}))
	require.False(t, a.Engine().Active(chat.Key{ChatID: 1, UserID: 11}))
}

func TestHandleAmbientWithoutSessionIsSilent(t *testing.T) {
	a := newTestAgent()
	out := &chattest.Outbox{}
	require.NoError(t, a.Handle(context.Background(), chat.Event{ChatID: 1, SenderID: 2, Text: "random chatter", Scope: chat.ScopeAmbient}, out))
	require.Empty(t, out.Replies())
}

func TestHandleSurfacesHandlerErrors(t *testing.T) {
	boom := errors.New("boom")
	a := New(dialog.NewEngine(nil), intent.MustNew(intent.Intent{
		ID:       "x",
		Keywords: []string{"x"},
		Handler:  func(context.Context, chat.Event, chat.Outbox) error { return boom },
	}))
	err := a.Handle(context.Background(), chat.Event{Text: "x", Scope: chat.ScopeDirectMessage}, &chattest.Outbox{})
	require.ErrorIs(t, err, boom)
}
