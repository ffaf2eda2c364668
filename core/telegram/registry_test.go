package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeanzhou31/slackattack/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noopHandler(tele.Context) error { return nil }

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noopHandler, Description: "Say hello"}))
	require.NoError(t, reg.RegisterCommand("/cancel", commands.Command{Handler: noopHandler, Description: "Stop", Aliases: []string{"stop"}}))
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{Handler: noopHandler, Description: "Stats", AdminOnly: true}))

	require.Error(t, reg.RegisterCommand("/start", commands.Command{Handler: noopHandler, Description: "again"}))
	require.Error(t, reg.RegisterCommand("help", commands.Command{Handler: noopHandler, Description: "x"}))
	require.Error(t, reg.RegisterCommand("/help", commands.Command{Description: "x"}))

	require.Equal(t, []tele.Command{
		{Text: "cancel", Description: "Stop"},
		{Text: "start", Description: "Say hello"},
	}, reg.ListCommands(true))
	require.Len(t, reg.ListCommands(false), 3)

	for _, text := range []string{"/cancel", "/CANCEL@jean_bot", "/stop now", "cancel"} {
		key, _, ok := reg.LookupCommand(text)
		require.True(t, ok, text)
		require.Equal(t, "/cancel", key)
	}
	_, _, ok := reg.LookupCommand("/unknown")
	require.False(t, ok)
}
