package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/motivebot/core/config"
	coretelegram "github.com/m3rciful/motivebot/core/telegram"
)

type stubApp struct {
	opts coretelegram.RunOptions
	err  error
}

func (s stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) { return s.opts, s.err }

func TestRunPassesConfigPathAndHooks(t *testing.T) {
	t.Setenv("MOTIVEBOT_TEST_CONFIG", "/etc/motivebot.yaml")
	cfg := &coreconfig.Config{}
	var gotPath string
	var started, stopped, flushed bool

	err := Run(Options{
		ConfigEnvVar: "MOTIVEBOT_TEST_CONFIG",
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			gotPath = path
			return cfg, nil
		},
		Bootstrap: func(c *coreconfig.Config) (TelegramApp, error) {
			if c != cfg {
				t.Fatal("bootstrap received a different config")
			}
			return stubApp{opts: coretelegram.RunOptions{Config: c}}, nil
		},
		ShutdownLogger: func() error { flushed = true; return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			started = true
			stopped = opts.OnStop(ctx, coretelegram.Runtime{}) == nil
			return nil
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gotPath != "/etc/motivebot.yaml" {
		t.Fatalf("path = %q", gotPath)
	}
	if !started || !stopped || !flushed {
		t.Fatalf("started=%v stopped=%v flushed=%v", started, stopped, flushed)
	}
}

func TestRunEnvOnlyConfig(t *testing.T) {
	t.Setenv("MOTIVEBOT_TEST_CONFIG", "")
	var gotPath = "unset"
	err := Run(Options{
		ConfigEnvVar: "MOTIVEBOT_TEST_CONFIG",
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			gotPath = path
			return &coreconfig.Config{}, nil
		},
		Bootstrap:      func(*coreconfig.Config) (TelegramApp, error) { return stubApp{}, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram:    func(context.Context, coretelegram.RunOptions) error { return nil },
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gotPath != "" {
		t.Fatalf("path = %q, want empty", gotPath)
	}
}

func TestRunErrors(t *testing.T) {
	boom := errors.New("boom")
	noop := func() error { return nil }
	load := func(string) (*coreconfig.Config, error) { return &coreconfig.Config{}, nil }

	if err := Run(Options{}); err == nil {
		t.Fatal("expected error without LoadConfig")
	}
	if err := Run(Options{LoadConfig: load}); err == nil {
		t.Fatal("expected error without Bootstrap")
	}

	err := Run(Options{
		LoadConfig:     func(string) (*coreconfig.Config, error) { return nil, boom },
		Bootstrap:      func(*coreconfig.Config) (TelegramApp, error) { return stubApp{}, nil },
		ShutdownLogger: noop,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("load err = %v", err)
	}

	err = Run(Options{
		LoadConfig:     load,
		Bootstrap:      func(*coreconfig.Config) (TelegramApp, error) { return nil, boom },
		ShutdownLogger: noop,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("bootstrap err = %v", err)
	}

	err = Run(Options{
		LoadConfig:     load,
		Bootstrap:      func(*coreconfig.Config) (TelegramApp, error) { return stubApp{err: boom}, nil },
		ShutdownLogger: noop,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("options err = %v", err)
	}
}
