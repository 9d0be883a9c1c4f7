package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/motivebot/core/logger"
	"github.com/m3rciful/motivebot/core/netutil"
	tghelpers "github.com/m3rciful/motivebot/core/telegram/helpers"
	"github.com/m3rciful/motivebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summary describes the single handler.handled line written per routed update.
type summary struct {
	handler string
	// status and outcome default to ok/fail from the handler error.
	status  string
	outcome string
	attrs   []slog.Attr
}

func newSummary(handler string, attrs ...slog.Attr) *summary {
	return &summary{handler: handler, attrs: attrs}
}

// skipped marks an update that matched no handler.
func (s *summary) skipped() *summary {
	s.status, s.outcome = "skip", "ok"
	return s
}

// run tags the update context with the handler, calls h and logs the result.
// A nil h only writes the summary.
func (s *summary) run(c tele.Context, h tele.HandlerFunc) error {
	start := time.Now()
	tghelpers.WithHandler(c, s.handler)
	var err error
	if h != nil {
		err = h(c)
	}
	s.log(c, start, err)
	return err
}

func (s *summary) log(c tele.Context, start time.Time, err error) {
	ctx := tghelpers.WithHandler(c, s.handler)
	msgs, kb := middleware.GetCounters(c)

	status, outcome := "ok", "ok"
	if err != nil {
		status, outcome = "fail", "fail"
	}
	if s.status != "" {
		status = s.status
	}
	if s.outcome != "" {
		outcome = s.outcome
	}

	attrs := make([]slog.Attr, 0, 9+len(s.attrs))
	attrs = append(attrs,
		slog.String("status", status),
		slog.String("handler", s.handler),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
			slog.String("cause", s.handler),
		)
	}
	attrs = append(attrs, s.attrs...)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
}

// normalizeHandlerName turns a command or callback key into a log-safe handler name.
func normalizeHandlerName(name string) string {
	name = logger.SanitizeLimit(strings.TrimPrefix(strings.TrimSpace(name), "/"), 64)
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// deriveErrorCode returns an upper-case code for err_code: an explicit Code() first,
// then the Bot API error code, then the network failure kind.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := strings.TrimSpace(coded.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return fmt.Sprintf("TG_%d", apiErr.Code)
	}
	if errors.Is(err, context.Canceled) {
		return "CANCELLED"
	}
	return strings.ToUpper(netutil.Classify(err))
}
