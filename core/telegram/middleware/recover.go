package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/motivebot/core/logger"
	tghelpers "github.com/m3rciful/motivebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ErrPanic wraps a recovered handler panic.
type ErrPanic struct {
	Value any
}

func (e *ErrPanic) Error() string { return fmt.Sprintf("handler panic: %v", e.Value) }

// Code labels the panic for the handler summary.
func (e *ErrPanic) Code() string { return "PANIC" }

// RecoverMiddleware turns a handler panic into an *ErrPanic and logs the stack.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error(tghelpers.BuildContext(c), "tg", "tg.panic",
				slog.Any("err", r),
				slog.String("stack", logger.SanitizeLimit(string(debug.Stack()), 4096)),
			)
			err = &ErrPanic{Value: r}
		}()
		return next(c)
	}
}
