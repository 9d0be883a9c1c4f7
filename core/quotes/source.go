package quotes

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/motivebot/core/logger"
	"github.com/m3rciful/motivebot/core/netutil"
)

// DefaultTimeout bounds a single remote fetch.
const DefaultTimeout = 6 * time.Second

// SourceOptions configures NewSource.
type SourceOptions struct {
	Catalog *Catalog
	// Provider is queried for uncategorised requests. Nil disables the remote call.
	Provider Provider
	Timeout  time.Duration
}

// Source resolves quotes. Fetch never fails: any provider error collapses
// into a pick from the local fallback list.
type Source struct {
	catalog  *Catalog
	provider Provider
	timeout  time.Duration
}

// NewSource builds a Source. A nil catalog selects DefaultCatalog.
func NewSource(opts SourceOptions) *Source {
	cat := opts.Catalog
	if cat == nil {
		cat = DefaultCatalog()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Source{
		catalog:  cat,
		provider: opts.Provider,
		timeout:  timeout,
	}
}

// Catalog exposes the catalog backing the source.
func (s *Source) Catalog() *Catalog {
	return s.catalog
}

// Fetch returns a quote for cat. Known categories are served from the catalog
// without touching the network; an empty or unknown category goes to the
// remote provider and falls back to the local list on any failure.
func (s *Source) Fetch(ctx context.Context, cat Category) Quote {
	if cat != "" {
		if text, ok := s.catalog.Sample(cat); ok {
			return Quote{Text: text}
		}
	}

	q, err := s.fetchRemote(ctx)
	if err == nil {
		return q
	}
	return Quote{Text: s.catalog.SampleFallback()}
}

var errRemoteDisabled = errors.New("quotes: remote provider disabled")

func (s *Source) fetchRemote(ctx context.Context) (Quote, error) {
	if s.provider == nil {
		return Quote{}, errRemoteDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	q, err := s.provider.Random(callCtx)
	took := logger.RoundMS(time.Since(start))
	if err != nil {
		logger.Warn(ctx, "quotes", "provider.fallback",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("error_kind", errorKind(err)),
			slog.Duration("duration", took),
		)
		return Quote{}, err
	}
	logger.Debug(ctx, "quotes", "provider.fetch",
		slog.String("status", "ok"),
		slog.Duration("duration", took),
	)
	return q, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedResponse):
		return "decode"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	}
	return netutil.Classify(err)
}
