package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/motivebot/core/logger"
	tg "github.com/m3rciful/motivebot/core/telegram"
	"github.com/m3rciful/motivebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes prepares command handlers wrapped with shared middleware and a summary log.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name := normalizeHandlerName(cmd)
		next := def.Handler
		h := func(c tele.Context) error {
			return newSummary(name).run(c, next)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
		})
	}

	logger.Info(context.Background(), "tg.wire", "complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
