// Package adapter binds the chat-agnostic dispatcher to Telegram updates.
package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/m3rciful/motivebot/core/dispatch"
	"github.com/m3rciful/motivebot/core/reply"
	"github.com/m3rciful/motivebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/motivebot/core/telegram/helpers"
	"github.com/m3rciful/motivebot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Transport implements dispatch.Transport for the update carried by one tele.Context.
type Transport struct {
	c tele.Context
}

var _ dispatch.Transport = (*Transport)(nil)

// NewTransport wraps c.
func NewTransport(c tele.Context) *Transport {
	return &Transport{c: c}
}

// Acknowledge answers the callback query so the client stops its progress indicator.
func (t *Transport) Acknowledge(_ context.Context, ev dispatch.Event) error {
	if ev.Kind != dispatch.KindButton || t.c.Callback() == nil {
		return nil
	}
	if err := t.c.Respond(); err != nil {
		return fmt.Errorf("telegram: answer callback: %w", err)
	}
	return nil
}

// Send posts r as a new message in the update's chat.
func (t *Transport) Send(_ context.Context, chatID int64, r reply.Reply) error {
	if err := t.checkChat(chatID); err != nil {
		return err
	}
	return tghelpers.SendText(t.c, r.Text, Markup(r))
}

// EditLast rewrites the message that carried the pressed button. Without a callback
// message to edit, the reply is sent as a new message.
func (t *Transport) EditLast(ctx context.Context, chatID int64, r reply.Reply) error {
	if err := t.checkChat(chatID); err != nil {
		return err
	}
	if cb := t.c.Callback(); cb == nil || cb.Message == nil {
		return t.Send(ctx, chatID, r)
	}
	return tghelpers.EditText(t.c, r.Text, Markup(r))
}

func (t *Transport) checkChat(chatID int64) error {
	if chat := t.c.Chat(); chat != nil && chatID != 0 && chat.ID != chatID {
		return fmt.Errorf("telegram: reply for chat %d on update from chat %d", chatID, chat.ID)
	}
	return nil
}

// Markup converts the keyboard of r to an inline keyboard. Buttons carry their token
// as raw callback data. A reply without buttons yields nil.
func Markup(r reply.Reply) *tele.ReplyMarkup {
	if !r.HasKeyboard() {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, 0, len(r.Keyboard))
	for _, row := range r.Keyboard {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			btns = append(btns, keyboard.InlineBtn{Text: b.Label, Data: string(b.Token)})
		}
		rows = append(rows, btns)
	}
	return keyboard.InlineButtonsRows(rows...)
}

// EventFromUpdate classifies upd. Updates without text or callback data report false.
func EventFromUpdate(upd tele.Update) (dispatch.Event, bool) {
	if cb := upd.Callback; cb != nil {
		var chatID int64
		if cb.Message != nil && cb.Message.Chat != nil {
			chatID = cb.Message.Chat.ID
		}
		return dispatch.ButtonEvent(cb.ID, chatID, reply.Token(callbacks.Key(cb))), true
	}

	msg := upd.Message
	if msg == nil || msg.Text == "" {
		return dispatch.Event{}, false
	}
	var chatID int64
	if msg.Chat != nil {
		chatID = msg.Chat.ID
	}
	if strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
		return dispatch.CommandEvent(chatID, strings.TrimSpace(msg.Text)), true
	}
	return dispatch.TextEvent(chatID, msg.Text), true
}

// Handler adapts d to a Telebot handler usable for commands, text and callbacks.
func Handler(d *dispatch.Dispatcher) tele.HandlerFunc {
	return func(c tele.Context) error {
		ev, ok := EventFromUpdate(c.Update())
		if !ok {
			return nil
		}
		return d.Handle(tghelpers.BuildContext(c), NewTransport(c), ev)
	}
}
