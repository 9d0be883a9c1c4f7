package router

import (
	"log/slog"
	"strings"

	tg "github.com/m3rciful/motivebot/core/telegram"
	"github.com/m3rciful/motivebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the handler for plain text. Text starting with "/" is resolved through
// the registry, which also covers aliases; unregistered commands are skipped. Any other text
// goes to the registry's text fallback.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		text := c.Text()

		if strings.HasPrefix(strings.TrimSpace(text), "/") {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return newSummary(name).run(c, cmd.Handler)
			}
			return newSummary("unknown_command", slog.String("command", commandToken(text))).skipped().run(c, nil)
		}

		if fb := textFallback(reg); fb != nil {
			return newSummary("text").run(c, fb)
		}

		if opts.UnknownText != nil {
			return newSummary("unknown_text").run(c, opts.UnknownText)
		}
		return newSummary("unknown_text").skipped().run(c, nil)
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}

func commandToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return normalizeHandlerName(fields[0])
}

func textFallback(reg *tg.Registry) tele.HandlerFunc {
	if reg == nil {
		return nil
	}
	return reg.TextFallback()
}
