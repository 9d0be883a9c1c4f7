package app

import (
	"testing"

	"github.com/m3rciful/motivebot/core/bootstrap"
	coreconfig "github.com/m3rciful/motivebot/core/config"

	tele "gopkg.in/telebot.v4"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "1:x"}}
	cfg.Quotes.DisableRemote = true
	if err := coreconfig.Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	res, err := bootstrap.Run(bootstrap.Options{
		Config:     cfg,
		LoggerInit: func(*coreconfig.Config) error { return nil },
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return &App{cfg: cfg, res: res}
}

func TestRegistry(t *testing.T) {
	reg, err := testApp(t).Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	menu := reg.ListCommands(true)
	if len(menu) != 2 || menu[0].Text != "category" || menu[1].Text != "start" {
		t.Fatalf("menu = %+v", menu)
	}
	if key, _, ok := reg.LookupCommand("/help"); !ok || key != "/start" {
		t.Fatalf("/help resolves to %q (%v)", key, ok)
	}
	want := []string{"confidence", "exit", "gym", "random", "study", "success"}
	got := reg.ListCallbacks()
	if len(got) != len(want) {
		t.Fatalf("callbacks = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("callbacks = %v, want %v", got, want)
		}
	}
	if reg.TextFallback() == nil {
		t.Fatal("text fallback must be set")
	}
}

func TestTelegramRunOptions(t *testing.T) {
	a := testApp(t)
	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Config != a.CoreConfig() || opts.Registry == nil {
		t.Fatal("config and registry must be set")
	}
	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, ep := range []any{"/start", "/category", tele.OnText, tele.OnCallback} {
		if !endpoints[ep] {
			t.Fatalf("missing route %v in %v", ep, endpoints)
		}
	}
	if len(opts.Middlewares) != 3 {
		t.Fatalf("middlewares = %d", len(opts.Middlewares))
	}
}
