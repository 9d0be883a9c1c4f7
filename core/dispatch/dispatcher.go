// Package dispatch routes inbound chat events to quote replies.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/motivebot/core/logger"
	"github.com/m3rciful/motivebot/core/quotes"
	"github.com/m3rciful/motivebot/core/reply"
)

// Command names handled by the dispatcher.
const (
	CommandStart    = "start"
	CommandHelp     = "help"
	CommandCategory = "category"
)

// Transport delivers replies for one chat platform.
type Transport interface {
	// Acknowledge clears the pending indicator of a button press.
	Acknowledge(ctx context.Context, ev Event) error
	// Send posts a new message.
	Send(ctx context.Context, chatID int64, r reply.Reply) error
	// EditLast replaces the message that carried the pressed button.
	EditLast(ctx context.Context, chatID int64, r reply.Reply) error
}

// QuoteSource resolves a quote; an empty category means "any". It must not fail.
type QuoteSource interface {
	Fetch(ctx context.Context, cat quotes.Category) quotes.Quote
}

// Dispatcher maps events to replies. It keeps no per-chat state and is safe for concurrent use.
type Dispatcher struct {
	source   QuoteSource
	composer *reply.Composer
	catalog  *quotes.Catalog
}

// New builds a Dispatcher. A nil catalog selects quotes.DefaultCatalog.
func New(source QuoteSource, cat *quotes.Catalog) *Dispatcher {
	if cat == nil {
		cat = quotes.DefaultCatalog()
	}
	return &Dispatcher{
		source:   source,
		composer: reply.NewComposer(cat),
		catalog:  cat,
	}
}

// Handle processes ev and delivers the reply through tr.
func (d *Dispatcher) Handle(ctx context.Context, tr Transport, ev Event) error {
	if tr == nil {
		return fmt.Errorf("dispatch: nil transport")
	}
	switch ev.Kind {
	case KindCommand:
		return d.handleCommand(ctx, tr, ev)
	case KindFreeText:
		q := d.source.Fetch(ctx, "")
		return d.deliver(ctx, tr, ev, d.composer.QuoteReply(q, reply.TokenRandom, false))
	case KindButton:
		return d.handleButton(ctx, tr, ev)
	}
	return fmt.Errorf("dispatch: unsupported event kind %d", ev.Kind)
}

func (d *Dispatcher) handleCommand(ctx context.Context, tr Transport, ev Event) error {
	switch ev.Command {
	case CommandStart, CommandHelp:
		return d.deliver(ctx, tr, ev, d.composer.Welcome())
	case CommandCategory:
		return d.deliver(ctx, tr, ev, d.composer.CategoryMenu())
	}
	logger.Debug(ctx, "dispatch", "command.skip",
		slog.String("status", "skip"),
		slog.String("command", ev.Command),
	)
	return nil
}

func (d *Dispatcher) handleButton(ctx context.Context, tr Transport, ev Event) error {
	if err := tr.Acknowledge(ctx, ev); err != nil {
		logger.Warn(ctx, "dispatch", "button.ack",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}

	token := ev.Token
	switch {
	case token == reply.TokenExit:
		return d.deliver(ctx, tr, ev, d.composer.Farewell())
	case token == reply.TokenRandom:
	case d.catalog.IsCategory(string(token)):
	default:
		logger.Info(ctx, "dispatch", "button.unknown_token",
			slog.String("status", "ok"),
			slog.String("cb_key", logger.SanitizeLimit(string(token), 64)),
		)
		token = reply.TokenRandom
	}

	var cat quotes.Category
	if token != reply.TokenRandom {
		cat = quotes.Category(token)
	}
	q := d.source.Fetch(ctx, cat)
	return d.deliver(ctx, tr, ev, d.composer.QuoteReply(q, token, true))
}

func (d *Dispatcher) deliver(ctx context.Context, tr Transport, ev Event, r reply.Reply) error {
	var err error
	if r.Edit {
		err = tr.EditLast(ctx, ev.ChatID, r)
	} else {
		err = tr.Send(ctx, ev.ChatID, r)
	}
	if err != nil {
		return fmt.Errorf("dispatch: deliver %s reply: %w", ev.Kind, err)
	}
	return nil
}
