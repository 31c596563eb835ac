// Package keyboard builds reply and inline markups.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button: a callback button when Unique is
// set, otherwise a URL button.
type InlineBtn struct {
	Text   string
	Unique string
	Data   []string
	URL    string
}

// Remove hides the reply keyboard.
func Remove() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// Reply builds a resized reply keyboard from rows of labels.
func Reply(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// ShareContact builds a one-time keyboard with a single contact request button.
func ShareContact(label string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	markup.Reply(markup.Row(markup.Contact(label)))
	return markup
}

// Inline builds an inline keyboard from rows of buttons.
func Inline(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, b := range row {
			if b.Unique == "" {
				buttons = append(buttons, markup.URL(b.Text, b.URL))
				continue
			}
			buttons = append(buttons, markup.Data(b.Text, b.Unique, b.Data...))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Inline(keyboard...)
	return markup
}

// Column puts every button on its own row.
func Column(buttons ...InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineBtn{b})
	}
	return Inline(rows...)
}

// Empty is an inline markup with no buttons; editing a message with it
// strips the existing keyboard.
func Empty() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{}}
}
