package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/citybot/core/config"
	coretelegram "github.com/m3rciful/citybot/core/telegram"
)

type stubConfig struct{ core *coreconfig.Config }

func (s stubConfig) CoreConfig() *coreconfig.Config { return s.core }

type stubApp struct {
	started bool
	stopped bool
	closed  bool
}

func (a *stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error {
			a.started = true
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			a.stopped = true
			return nil
		},
	}, nil
}

func (a *stubApp) Close() error {
	a.closed = true
	return nil
}

func TestRunUsesDefaultConfigPath(t *testing.T) {
	t.Setenv("CITYBOT_TEST_CONFIG", "")
	app := &stubApp{}
	var gotPath string
	err := Run(Options{
		ConfigEnvVar: "CITYBOT_TEST_CONFIG",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			gotPath = path
			return stubConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if gotPath != DefaultConfigPath {
		t.Fatalf("expected default path %q, got %q", DefaultConfigPath, gotPath)
	}
	if !app.started || !app.stopped {
		t.Fatalf("lifecycle hooks not chained: started=%v stopped=%v", app.started, app.stopped)
	}
	if !app.closed {
		t.Fatalf("expected app to be closed after run")
	}
}

func TestRunPropagatesBootstrapError(t *testing.T) {
	boom := errors.New("boom")
	t.Setenv("CONFIG_PATH", "custom.yaml")
	var gotPath string
	err := Run(Options{
		LoadConfig: func(path string) (ConfigCarrier, error) {
			gotPath = path
			return stubConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
	if gotPath != "custom.yaml" {
		t.Fatalf("expected env path, got %q", gotPath)
	}
}

func TestRunRejectsMissingCoreConfig(t *testing.T) {
	err := Run(Options{
		DefaultConfigPath: "x.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return stubConfig{}, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) { return &stubApp{}, nil },
	})
	if err == nil {
		t.Fatalf("expected error for missing core config")
	}
}
