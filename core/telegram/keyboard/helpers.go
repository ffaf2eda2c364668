package keyboard

import tele "gopkg.in/telebot.v4"

// RemoveKeyboard returns a markup that hides a previously shown keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a reply keyboard from rows of text.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Choices lays quick replies out on a single one-time row. No choices
// yields a markup that removes any open keyboard.
func Choices(choices []string) *tele.ReplyMarkup {
	if len(choices) == 0 {
		return RemoveKeyboard()
	}
	markup := ReplyButtons(choices)
	markup.OneTimeKeyboard = true
	return markup
}
