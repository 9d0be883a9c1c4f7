package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/motivebot/core/config"
	"github.com/m3rciful/motivebot/core/dispatch"
	"github.com/m3rciful/motivebot/core/logger"
	"github.com/m3rciful/motivebot/core/netutil"
	"github.com/m3rciful/motivebot/core/quotes"
)

// Options control the bootstrap pipeline. Nil hooks select the defaults.
type Options struct {
	Config *coreconfig.Config

	LoggerInit  func(*coreconfig.Config) error
	LoadCatalog func(path string) (*quotes.Catalog, error)
	// Provider replaces the HTTP quote provider built from the quotes section.
	Provider quotes.Provider
}

// Result exposes the components initialized by the bootstrap pipeline.
type Result struct {
	Catalog    *quotes.Catalog
	Source     *quotes.Source
	Dispatcher *dispatch.Dispatcher
}

// Run initializes the logger, loads the quote catalog and builds the dispatcher.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	cfg := opts.Config

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	cat, err := loadCatalog(opts, cfg.Quotes.CatalogPath)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Quotes.TimeoutMS) * time.Millisecond
	provider := opts.Provider
	if provider == nil && !cfg.Quotes.DisableRemote {
		provider = quotes.NewHTTPProvider(cfg.Quotes.ProviderURL, netutil.BuildHTTPClient(netutil.ClientOptions{
			Timeout:               timeout,
			ResponseHeaderTimeout: timeout,
		}))
	}

	src := quotes.NewSource(quotes.SourceOptions{
		Catalog:  cat,
		Provider: provider,
		Timeout:  timeout,
	})

	logger.Info(context.Background(), "quotes", "source.ready",
		slog.Int("categories", len(cat.Keys())),
		slog.Int("fallback", len(cat.Fallback())),
		slog.Bool("remote", provider != nil),
		slog.String("provider", providerLabel(cfg, provider)),
		slog.Duration("timeout", timeout),
	)

	return &Result{
		Catalog:    cat,
		Source:     src,
		Dispatcher: dispatch.New(src, cat),
	}, nil
}

func loadCatalog(opts Options, path string) (*quotes.Catalog, error) {
	if path == "" {
		return quotes.DefaultCatalog(), nil
	}
	load := opts.LoadCatalog
	if load == nil {
		load = quotes.LoadCatalogFile
	}
	cat, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: quote catalog %s: %w", path, err)
	}
	return cat, nil
}

func providerLabel(cfg *coreconfig.Config, p quotes.Provider) string {
	if p == nil {
		return "disabled"
	}
	if _, ok := p.(*quotes.HTTPProvider); ok {
		return cfg.Quotes.ProviderURL
	}
	return "custom"
}
