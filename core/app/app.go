// Package app wires the quote dispatcher into the Telegram runtime.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/motivebot/core/bootstrap"
	coreconfig "github.com/m3rciful/motivebot/core/config"
	"github.com/m3rciful/motivebot/core/dispatch"
	"github.com/m3rciful/motivebot/core/logger"
	"github.com/m3rciful/motivebot/core/reply"
	tg "github.com/m3rciful/motivebot/core/telegram"
	"github.com/m3rciful/motivebot/core/telegram/adapter"
	"github.com/m3rciful/motivebot/core/telegram/commands"
	"github.com/m3rciful/motivebot/core/telegram/router"
)

// App holds the bootstrapped components of the bot.
type App struct {
	cfg *coreconfig.Config
	res *bootstrap.Result
}

// New runs the bootstrap pipeline for cfg.
func New(cfg *coreconfig.Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, res: res}, nil
}

// CoreConfig returns the loaded configuration.
func (a *App) CoreConfig() *coreconfig.Config {
	return a.cfg
}

// Dispatcher returns the chat-agnostic event dispatcher.
func (a *App) Dispatcher() *dispatch.Dispatcher {
	return a.res.Dispatcher
}

// Registry builds the command and callback registry. Every entry resolves to the dispatcher;
// the registry only names handlers for logs and the command menu.
func (a *App) Registry() (*tg.Registry, error) {
	h := adapter.Handler(a.res.Dispatcher)
	reg := tg.NewRegistry()

	reg.RegisterCommand("/"+dispatch.CommandStart, commands.Command{
		Handler:     h,
		Description: "Show the welcome message",
		Aliases:     []string{dispatch.CommandHelp},
	})
	reg.RegisterCommand("/"+dispatch.CommandCategory, commands.Command{
		Handler:     h,
		Description: "Choose a quote category",
	})

	tokens := []reply.Token{reply.TokenRandom, reply.TokenExit}
	for _, cat := range a.res.Catalog.Keys() {
		tokens = append(tokens, reply.Token(cat))
	}
	for _, tok := range tokens {
		if err := reg.RegisterCallback(string(tok), h); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}
	reg.SetCallbackNotFound(h)
	reg.SetTextFallback(h)
	return reg, nil
}

// TelegramRunOptions assembles the runtime options: middlewares, routes and registry.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return tg.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	logger.Info(context.Background(), "tg.wire", "routes",
		slog.Int("routes", len(routes)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return tg.RunOptions{
		Config:            a.cfg,
		Registry:          reg,
		DispatcherOptions: tg.SenderOptions(a.cfg),
		Middlewares:       tg.DefaultMiddlewares(),
		Routes:            routes,
	}, nil
}
