// Package app assembles the city bot from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/citybot/core/bootstrap"
	coreconfig "github.com/m3rciful/citybot/core/config"
	coredatabase "github.com/m3rciful/citybot/core/database"
	"github.com/m3rciful/citybot/core/logger"
	coretelegram "github.com/m3rciful/citybot/core/telegram"
	"github.com/m3rciful/citybot/core/telegram/state"
	"github.com/m3rciful/citybot/internal/bot"
	"github.com/m3rciful/citybot/internal/citydata"
	"github.com/m3rciful/citybot/internal/dialog"
	"github.com/m3rciful/citybot/internal/ops"
)

// App holds the wired components of a running bot.
type App struct {
	cfg      *Config
	infra    *bootstrap.Result
	provider *citydata.Provider
	sessions state.Manager
	bot      *bot.Bot
}

// BootstrapOptions lets tests replace infrastructure hooks.
type BootstrapOptions struct {
	LoggerInit func(*Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// Bootstrap initializes logging, optional storage and the catalog, then
// builds the dialog and Telegram wiring.
func Bootstrap(ctx context.Context, cfg *Config, opts BootstrapOptions) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	var dbCfg *coredatabase.Config
	if cfg.Data.NeedsDatabase() {
		d := cfg.Database
		dbCfg = &d
	}

	modules := bootstrap.Modules{
		Services: bootstrap.TypedServiceProviderFunc[*citydata.Provider](
			func(ctx context.Context, _ any, storage bootstrap.Storage) (*citydata.Provider, error) {
				db, _ := storage.(*sqlx.DB)
				return citydata.Open(ctx, cfg.Data, db), nil
			},
		),
	}
	if cfg.Data.Seed {
		modules.Seeders = append(modules.Seeders, citydata.FileSeeder(cfg.Data.Files()))
	}

	bopts := bootstrap.Options{
		Config:           &cfg.Config,
		Database:         dbCfg,
		DatabaseOptional: true,
		Modules:          modules,
		Connect:          opts.Connect,
		Migrate:          opts.Migrate,
	}
	if opts.LoggerInit != nil {
		bopts.LoggerInit = func(*coreconfig.Config) error { return opts.LoggerInit(cfg) }
	}

	res, err := bootstrap.Run(ctx, bopts)
	if err != nil {
		return nil, err
	}
	provider, ok := res.Services.(*citydata.Provider)
	if !ok || provider == nil {
		_ = res.Close()
		return nil, fmt.Errorf("app: catalog provider not initialized")
	}

	sessions := state.NewMemoryManager()
	cityBot, err := bot.New(dialog.NewDispatcher(sessions, provider), sessions)
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("app: register commands: %w", err)
	}

	return &App{
		cfg:      cfg,
		infra:    res,
		provider: provider,
		sessions: sessions,
		bot:      cityBot,
	}, nil
}

// Provider exposes the catalog provider.
func (a *App) Provider() *citydata.Provider { return a.provider }

// TelegramRunOptions wires the bot into the core Telegram runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		Config:            &a.cfg.Config,
		Registry:          a.bot.Registry(),
		Routes:            a.bot.Routes(),
		DispatcherOptions: a.cfg.SenderOptions(),
		OnStart:           a.onStart,
	}, nil
}

func (a *App) onStart(ctx context.Context, _ coretelegram.Runtime) error {
	state.StartReaper(ctx, a.sessions, a.cfg.Session.IdleTTL, a.cfg.Session.ReapInterval)
	if a.cfg.HTTP.Listen != "" {
		ops.NewServer(a.cfg.HTTP.Listen, ops.NewRouter(a.provider, a.sessions)).Start(ctx)
	}
	logger.L.With("component", "app").Info("city bot wired",
		slog.String("event", "wired"),
		slog.String("source", a.cfg.Data.Source),
		slog.Int("cities", a.provider.Len()),
		slog.Bool("degraded", a.provider.Degraded()),
	)
	return nil
}

// Close releases storage.
func (a *App) Close() error {
	return a.infra.Close()
}
