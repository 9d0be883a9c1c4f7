package middleware

import (
	"log/slog"
	"strings"

	"github.com/m3rciful/motivebot/core/logger"
	"github.com/m3rciful/motivebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/motivebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const receivedKey = "motivebot.received"

// LoggerMiddleware prepares the update context and writes one sampled
// update.received debug line. Nested applications on the same update log once.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		if c.Get(receivedKey) == nil {
			c.Set(receivedKey, true)
			if logger.ShouldSampleDebug() {
				logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", receiptAttrs(c)...)
			}
		}
		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("kind", updateKind(c.Update())),
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil {
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		if user.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", user.LanguageCode))
		}
	}
	switch upd := c.Update(); {
	case upd.Callback != nil:
		if key := callbacks.Key(upd.Callback); key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
	case upd.Message != nil:
		if t := upd.Message.Text; t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	return attrs
}

// updateKind names the update the way the dispatcher does: command, text or button.
func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "button"
	case upd.Message == nil:
		return "other"
	case strings.HasPrefix(upd.Message.Text, "/"):
		return "command"
	case upd.Message.Text != "":
		return "text"
	}
	return "other"
}
