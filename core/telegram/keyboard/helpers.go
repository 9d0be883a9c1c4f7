package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes a convenience wrapper for inline button properties.
// With Unique empty, Data is sent as raw callback data.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn. Empty rows are skipped.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = inlineButton(markup, btn)
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

func inlineButton(markup *tele.ReplyMarkup, btn InlineBtn) tele.InlineButton {
	if btn.Unique == "" {
		return tele.InlineButton{Text: btn.Text, Data: btn.Data}
	}
	return *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
}
