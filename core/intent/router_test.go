package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeanzhou31/slackattack/core/chat"
	"github.com/jeanzhou31/slackattack/core/chat/chattest"
)

func recordInto(hits *[]string, id string) Handler {
	return func(_ context.Context, _ chat.Event, _ chat.Outbox) error {
		*hits = append(*hits, id)
		return nil
	}
}

func testRouter(hits *[]string) *Router {
	return MustNew(
		Intent{ID: "greeting", Keywords: []string{"hello", "hi", "howdy"}, Handler: recordInto(hits, "greeting")},
		Intent{ID: "help", Keywords: []string{"help"}, Handler: recordInto(hits, "help")},
		Intent{ID: "food", Keywords: []string{"food", "hungry", "eat", "restaurant"}, Handler: recordInto(hits, "food")},
		Intent{ID: "game", Keywords: []string{"number", "game", "guess", "play"}, Handler: recordInto(hits, "game")},
	)
}

func TestMatchIsCaseInsensitive(t *testing.T) {
	r := testRouter(new([]string))
	for text, want := range map[string]string{
		"HELLO":                  "greeting",
		"I'm so Hungry!!":        "food",
		"let's PLAY a game":      "game",
		"can you help, please?":  "help",
		"Where can I eat, howdy": "greeting",
	} {
		in, ok := r.Match(text)
		require.True(t, ok, text)
		require.Equal(t, want, in.ID, text)
	}
}

func TestMatchPriorityIsDeclarationOrder(t *testing.T) {
	r := testRouter(new([]string))
	// "help" is declared before "food" and "game" regardless of word order
	in, ok := r.Match("play a food game or help me")
	require.True(t, ok)
	require.Equal(t, "help", in.ID)

	for i := 0; i < 10; i++ {
		in, _ = r.Match("guess what food")
		require.Equal(t, "food", in.ID)
	}
}

func TestMatchWholeTokensOnly(t *testing.T) {
	r := testRouter(new([]string))
	for _, text := range []string{"othello", "chi", "helpful", "", "   "} {
		_, ok := r.Match(text)
		require.False(t, ok, text)
	}
}

func TestRouteScopes(t *testing.T) {
	ctx := context.Background()
	var hits []string
	r := testRouter(&hits)

	out := &chattest.Outbox{}
	res, err := r.Route(ctx, chat.Event{Text: "hello", Scope: chat.ScopeAmbient}, out)
	require.NoError(t, err)
	require.Equal(t, ResultIgnored, res)
	require.Empty(t, out.Replies())
	require.Empty(t, hits)

	res, err = r.Route(ctx, chat.Event{Text: "what is this", Scope: chat.ScopeAmbient}, out)
	require.NoError(t, err)
	require.Equal(t, ResultIgnored, res)
	require.Empty(t, out.Replies())

	for _, scope := range []chat.Scope{chat.ScopeDirectMessage, chat.ScopeDirectMention, chat.ScopeMention} {
		out := &chattest.Outbox{}
		res, err := r.Route(ctx, chat.Event{Text: "what is this", Scope: scope}, out)
		require.NoError(t, err)
		require.Equal(t, ResultUnrecognized, res)
		require.Equal(t, []string{Unrecognized}, out.Texts())
	}

	res, err = r.Route(ctx, chat.Event{Text: "Howdy", Scope: chat.ScopeMention}, out)
	require.NoError(t, err)
	require.Equal(t, ResultMatched, res)
	require.Equal(t, []string{"greeting"}, hits)
}

func TestRouteWrapsHandlerError(t *testing.T) {
	boom := errors.New("boom")
	r := MustNew(Intent{ID: "x", Keywords: []string{"x"}, Handler: func(context.Context, chat.Event, chat.Outbox) error { return boom }})
	res, err := r.Route(context.Background(), chat.Event{Text: "x", Scope: chat.ScopeDirectMessage}, &chattest.Outbox{})
	require.Equal(t, ResultMatched, res)
	require.ErrorIs(t, err, boom)
}

func TestNewRejectsBadDeclarations(t *testing.T) {
	h := func(context.Context, chat.Event, chat.Outbox) error { return nil }
	for name, intents := range map[string][]Intent{
		"empty id":    {{Keywords: []string{"a"}, Handler: h}},
		"duplicate":   {{ID: "a", Keywords: []string{"a"}, Handler: h}, {ID: "a", Keywords: []string{"b"}, Handler: h}},
		"no handler":  {{ID: "a", Keywords: []string{"a"}}},
		"no keywords": {{ID: "a", Keywords: []string{" ", "!"}, Handler: h}},
	} {
		_, err := New(intents...)
		require.ErrorIs(t, err, ErrInvalidIntent, name)
	}
	require.Equal(t, []string{"greeting", "help", "food", "game"}, testRouter(new([]string)).Intents())
}
