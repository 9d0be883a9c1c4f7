package router

import (
	"log/slog"

	tg "github.com/m3rciful/motivebot/core/telegram"
	"github.com/m3rciful/motivebot/core/telegram/callbacks"
	"github.com/m3rciful/motivebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry.
// Acknowledging the callback query is left to the resolved handler.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}

		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)
		keyAttr := slog.String("cb_key", normalizeHandlerName(key))

		cbHandler, ok := reg.GetCallback(key)
		if !ok || cbHandler == nil {
			fallback := opts.NotFound
			if fallback == nil {
				fallback = reg.CallbackNotFound()
			}
			return newSummary("callback.not_found", keyAttr, slog.String("reason", "not_found")).run(c, fallback)
		}

		return newSummary(name, keyAttr).run(c, cbHandler)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
