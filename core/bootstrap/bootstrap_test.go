package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	coreconfig "github.com/m3rciful/motivebot/core/config"
	"github.com/m3rciful/motivebot/core/quotes"
)

func noLogger(*coreconfig.Config) error { return nil }

type stubProvider struct{ q quotes.Quote }

func (s stubProvider) Random(context.Context) (quotes.Quote, error) { return s.q, nil }

func baseConfig() *coreconfig.Config {
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "1:x"}}
	if err := coreconfig.Normalize(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func TestRunDefaults(t *testing.T) {
	res, err := Run(Options{Config: baseConfig(), LoggerInit: noLogger})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Catalog != quotes.DefaultCatalog() {
		t.Fatal("expected the built-in catalog")
	}
	if res.Source == nil || res.Dispatcher == nil {
		t.Fatal("source and dispatcher must be built")
	}
}

func TestRunUsesInjectedProvider(t *testing.T) {
	want := quotes.Quote{Text: "Keep going", Attribution: "Someone"}
	res, err := Run(Options{Config: baseConfig(), LoggerInit: noLogger, Provider: stubProvider{q: want}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := res.Source.Fetch(context.Background(), ""); got != want {
		t.Fatalf("fetch = %+v, want %+v", got, want)
	}
}

func TestRunDisableRemoteUsesFallback(t *testing.T) {
	cfg := baseConfig()
	cfg.Quotes.DisableRemote = true
	res, err := Run(Options{Config: cfg, LoggerInit: noLogger})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got := res.Source.Fetch(context.Background(), "")
	found := false
	for _, q := range res.Catalog.Fallback() {
		if q == got.Text {
			found = true
		}
	}
	if !found {
		t.Fatalf("quote %q is not from the fallback list", got.Text)
	}
}

func TestRunCatalogOverride(t *testing.T) {
	cfg := baseConfig()
	cfg.Quotes.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := Run(Options{Config: cfg, LoggerInit: noLogger}); err == nil {
		t.Fatal("expected error for a missing catalog file")
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
fallback: ["f"]
categories:
  study: ["s"]
  success: ["w"]
  gym: ["g"]
  confidence: ["c"]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg.Quotes.CatalogPath = path
	res, err := Run(Options{Config: cfg, LoggerInit: noLogger})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if q, _ := res.Catalog.Sample(quotes.Gym); q != "g" {
		t.Fatalf("gym sample = %q", q)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := Run(Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
	boom := errors.New("boom")
	_, err := Run(Options{Config: baseConfig(), LoggerInit: func(*coreconfig.Config) error { return boom }})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
