package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/jeanzhou31/slackattack/core/chat"
	tg "github.com/jeanzhou31/slackattack/core/telegram"
	"github.com/jeanzhou31/slackattack/core/telegram/commands"
)

type fakeContext struct {
	tele.Context
	msg   *tele.Message
	store map[string]any
	sent  []any
}

func newFakeContext(chatType tele.ChatType, text string) *fakeContext {
	return &fakeContext{
		msg: &tele.Message{
			Text:   text,
			Chat:   &tele.Chat{ID: 100, Type: chatType},
			Sender: &tele.User{ID: 7, FirstName: "Jean", Username: "jz"},
		},
		store: make(map[string]any),
	}
}

func (f *fakeContext) Message() *tele.Message { return f.msg }
func (f *fakeContext) Chat() *tele.Chat { return f.msg.Chat }
func (f *fakeContext) Sender() *tele.User { return f.msg.Sender }
func (f *fakeContext) Update() tele.Update { return tele.Update{ID: 1, Message: f.msg} }
func (f *fakeContext) Text() string { return f.msg.Text }
func (f *fakeContext) Get(key string) any { return f.store[key] }
func (f *fakeContext) Set(key string, v any) { f.store[key] = v }

func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

type recordingAgent struct {
	events []chat.Event
	err    error
}

func (a *recordingAgent) Handle(ctx context.Context, ev chat.Event, out chat.Outbox) error {
	a.events = append(a.events, ev)
	out.Send(ctx, "echo: "+ev.Text)
	return a.err
}

var me = &tele.User{ID: 999, Username: "jean_bot"}

func textRoute(t *testing.T, reg *tg.Registry, agent Agent) tele.HandlerFunc {
	t.Helper()
	routes := MessageRoutes(reg, MessageOptions{
		Agent: agent,
		Me:    func() *tele.User { return me },
	})
	require.Len(t, routes, 1)
	require.Equal(t, tele.OnText, routes[0].Endpoint)
	return routes[0].Handler
}

func TestMessageRouteBuildsEvent(t *testing.T) {
	agent := &recordingAgent{}
	h := textRoute(t, nil, agent)

	c := newFakeContext(tele.ChatGroup, "@jean_bot I'm hungry")
	require.NoError(t, h(c))
	require.Equal(t, []chat.Event{{
		ChatID:     100,
		SenderID:   7,
		SenderName: "Jean",
		Text:       "I'm hungry",
		Scope:      chat.ScopeDirectMention,
	}}, agent.events)
	require.Equal(t, []any{"echo: I'm hungry"}, c.sent)

	c = newFakeContext(tele.ChatPrivate, "hello")
	require.NoError(t, h(c))
	require.Equal(t, chat.ScopeDirectMessage, agent.events[1].Scope)
}

func TestMessageRouteResolvesCommandAliases(t *testing.T) {
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCommand("/cancel", commands.Command{
		Handler:     commands.Reply("cancelled"),
		Description: "Stop the current conversation",
		Aliases:     []string{"stop"},
	}))
	agent := &recordingAgent{}
	h := textRoute(t, reg, agent)

	c := newFakeContext(tele.ChatPrivate, "/stop@jean_bot")
	require.NoError(t, h(c))
	require.Equal(t, []any{"cancelled"}, c.sent)
	require.Empty(t, agent.events)

	// unknown slash text still reaches the agent
	c = newFakeContext(tele.ChatPrivate, "/dance")
	require.NoError(t, h(c))
	require.Len(t, agent.events, 1)
}

func TestMessageRoutePropagatesAgentError(t *testing.T) {
	agent := &recordingAgent{err: errors.New("boom")}
	h := textRoute(t, nil, agent)
	require.EqualError(t, h(newFakeContext(tele.ChatPrivate, "hi")), "boom")
}

func TestCommandRoutesAdminOnly(t *testing.T) {
	reg := tg.NewRegistry()
	reg.MustRegister(map[string]commands.Command{
		"/help":  {Handler: commands.Reply("help text"), Description: "Show help"},
		"/stats": {Handler: commands.Reply("stats"), Description: "Show stats", AdminOnly: true},
	})

	routes := CommandRoutes(reg, CommandRouteOptions{
		AdminID:       42,
		OnAdminReject: commands.Reply("denied"),
	})
	require.Len(t, routes, 2)
	require.Equal(t, "/help", routes[0].Endpoint)
	require.Equal(t, "/stats", routes[1].Endpoint)

	c := newFakeContext(tele.ChatPrivate, "/stats")
	require.NoError(t, routes[1].Handler(c))
	require.Equal(t, []any{"denied"}, c.sent)

	c = newFakeContext(tele.ChatPrivate, "/stats")
	c.msg.Sender.ID = 42
	require.NoError(t, routes[1].Handler(c))
	require.Equal(t, []any{"stats"}, c.sent)
}

type codedError struct{ code string }

func (e codedError) Error() string { return "coded" }
func (e codedError) Code() string  { return e.code }

type plainError struct{}

func (*plainError) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	require.Empty(t, deriveErrorCode(nil))
	require.Equal(t, "RATE_LIMITED", deriveErrorCode(fmt.Errorf("wrap: %w", codedError{code: "rate limited"})))
	require.Equal(t, "PLAINERROR", deriveErrorCode(fmt.Errorf("wrap: %w", &plainError{})))
}

func TestNormalizeHandlerName(t *testing.T) {
	require.Equal(t, "unknown", normalizeHandlerName("  "))
	require.Equal(t, "stats", normalizeHandlerName("/Stats"))
}
