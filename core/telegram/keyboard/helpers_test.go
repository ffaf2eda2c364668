package keyboard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChoices(t *testing.T) {
	m := Choices([]string{"Yes", "No"})
	require.True(t, m.OneTimeKeyboard)
	require.True(t, m.ResizeKeyboard)
	require.Len(t, m.ReplyKeyboard, 1)
	require.Equal(t, "Yes", m.ReplyKeyboard[0][0].Text)
	require.Equal(t, "No", m.ReplyKeyboard[0][1].Text)

	require.True(t, Choices(nil).RemoveKeyboard)
}

func TestReplyButtonsSkipsEmptyRows(t *testing.T) {
	m := ReplyButtons([]string{"a"}, nil, []string{"b", "c"})
	require.Len(t, m.ReplyKeyboard, 2)
}
