package helpers

import (
	"context"
	"sync/atomic"

	"github.com/m3rciful/motivebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const ctxKey = "motivebot.ctx"

type baseHolder struct{ ctx context.Context }

var base atomic.Pointer[baseHolder]

// SetBaseContext sets the parent of every update context. Cancelling it cancels
// in-flight handler work such as quote fetches. nil restores context.Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		base.Store(nil)
		return
	}
	base.Store(&baseHolder{ctx: ctx})
}

func baseContext() context.Context {
	if h := base.Load(); h != nil {
		return h.ctx
	}
	return context.Background()
}

// UpdateMeta returns the identifiers every log line of an update carries.
func UpdateMeta(c tele.Context) (updateID int, chatID, userID int64) {
	if c == nil {
		return 0, 0, 0
	}
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	return c.Update().ID, chatID, userID
}

// StoreContext caches ctx on c for the rest of the update.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxKey, ctx)
	}
}

// ContextFrom returns the context cached by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the cached update context, creating it on first use.
// The context carries the RID, update metadata and the "tg" component logger.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	if c == nil {
		return baseContext()
	}
	updateID, chatID, userID := UpdateMeta(c)
	ctx := logger.WithRID(baseContext(), logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the update context with the resolved handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" || logger.HandlerFrom(ctx) == handler {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}
