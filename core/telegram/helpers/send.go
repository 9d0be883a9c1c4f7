package helpers

import (
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/m3rciful/motivebot/core/logger"
	"github.com/m3rciful/motivebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	NoteReply(c, markup != nil)
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if markup != nil {
			return c.Send(text, &tele.SendOptions{ReplyMarkup: markup})
		}
		return c.Send(text)
	})
}

// EditText replaces the text and inline keyboard of the message the callback came from.
// A nil markup removes the keyboard. Editing to identical content is not an error.
func EditText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	NoteReply(c, markup != nil)
	return sendAsync(c, "edit.text", "editMessageText", func() error {
		err := c.Edit(text, &tele.SendOptions{ReplyMarkup: markup})
		if IsNotModified(err) {
			return nil
		}
		return err
	})
}

// IsNotModified reports Telegram's "message is not modified" rejection. Variants of the
// description that telebot does not map to its sentinel are matched on the API error.
func IsNotModified(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, tele.ErrSameMessageContent) {
		return true
	}
	var apiErr *tele.Error
	return errors.As(err, &apiErr) && apiErr.Code == 400 &&
		strings.Contains(strings.ToLower(apiErr.Description), "message is not modified")
}
