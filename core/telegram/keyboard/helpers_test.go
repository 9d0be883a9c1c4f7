package keyboard

import "testing"

func TestInlineButtonsRowsRawData(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "Random", Data: "random"}},
		nil,
		[]InlineBtn{{Text: "A", Data: "a"}, {Text: "B", Data: "b"}},
	)
	if got := len(markup.InlineKeyboard); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	if btn := markup.InlineKeyboard[0][0]; btn.Text != "Random" || btn.Data != "random" || btn.Unique != "" {
		t.Fatalf("unexpected first button %+v", btn)
	}
	if got := len(markup.InlineKeyboard[1]); got != 2 {
		t.Fatalf("second row = %d buttons, want 2", got)
	}
}

func TestInlineButtonsRowsUnique(t *testing.T) {
	markup := InlineButtonsRows([]InlineBtn{{Text: "Go", Unique: "go", Data: "1"}})
	btn := markup.InlineKeyboard[0][0]
	if btn.Unique != "go" || btn.Data != "1" {
		t.Fatalf("unexpected button %+v", btn)
	}
}
