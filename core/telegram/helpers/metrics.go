package helpers

import tele "gopkg.in/telebot.v4"

const (
	messagesKey = "messages"
	keyboardKey = "kb"
)

// ResetCounters zeroes the per-update reply counters.
func ResetCounters(c tele.Context) {
	if c == nil {
		return
	}
	c.Set(messagesKey, 0)
	c.Set(keyboardKey, false)
}

// NoteReply counts a reply accepted for delivery in the current update.
func NoteReply(c tele.Context, hasKB bool) {
	if c == nil {
		return
	}
	n, _ := c.Get(messagesKey).(int)
	c.Set(messagesKey, n+1)
	if hasKB {
		c.Set(keyboardKey, true)
	}
}

// Counters returns the reply count and keyboard flag recorded for the current update.
func Counters(c tele.Context) (int, bool) {
	if c == nil {
		return 0, false
	}
	msgs, _ := c.Get(messagesKey).(int)
	kb, _ := c.Get(keyboardKey).(bool)
	return msgs, kb
}
