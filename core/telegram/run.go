package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/citybot/core/config"
	"github.com/m3rciful/citybot/core/logger"
	tghelpers "github.com/m3rciful/citybot/core/telegram/helpers"
	tgsender "github.com/m3rciful/citybot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named bot-wide middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a telebot endpoint (a command string, tele.OnText
// and so on).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions configures RunTelegram. Only Config is required.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher
	HTTPClient        HTTPClientOptions
	// AllowedUpdates defaults to DefaultAllowedUpdates.
	AllowedUpdates []string

	// Middlewares defaults to DefaultMiddlewares when nil.
	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup   bool
	DisableHelperDispatcher bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime is handed to the lifecycle hooks.
type Runtime struct {
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram connects to Telegram, installs middlewares, routes and the
// command menu, then serves updates until ctx is cancelled. Cancellation is
// a clean stop and yields nil.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	bot, err := connect(ctx, opts)
	if err != nil {
		return err
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	if !opts.DisableHelperDispatcher {
		tghelpers.SetDispatcher(dispatcher)
	}
	defer func() {
		dispatcher.Close()
		if !opts.DisableHelperDispatcher {
			tghelpers.SetDispatcher(nil)
		}
	}()

	install(ctx, bot, opts)

	rt := Runtime{Dispatcher: dispatcher, Registry: opts.Registry}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runErr := serve(ctx, bot)
	if opts.OnStop != nil {
		if err := opts.OnStop(ctx, rt); err != nil {
			return err
		}
	}
	return runErr
}

func connect(ctx context.Context, opts RunOptions) (*tele.Bot, error) {
	pollerOpts := PollerOptionsFrom(opts.Config)
	pollerOpts.AllowedUpdates = opts.AllowedUpdates
	poller := BuildPoller(pollerOpts)

	started := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  opts.Config.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(opts.HTTPClient),
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logMode(ctx, poller, time.Since(started))

	if _, polling := poller.(*tele.LongPoller); polling && !opts.DisableWebhookCleanup {
		removeWebhook(ctx, bot)
	}
	return bot, nil
}

func install(ctx context.Context, bot *tele.Bot, opts RunOptions) {
	middlewares := opts.Middlewares
	if middlewares == nil {
		middlewares = DefaultMiddlewares()
	}
	names := make([]string, 0, len(middlewares))
	for _, mw := range middlewares {
		if mw.Use == nil {
			continue
		}
		bot.Use(mw.Use)
		names = append(names, mw.Name)
	}

	routes := 0
	for _, r := range opts.Routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
			routes++
		}
	}
	SetupCommands(bot, opts.Registry)

	summary, _ := logger.SummarizeStrings(names, 8)
	logger.TWire.LogAttrs(ctx, slog.LevelInfo, "routes registered",
		slog.String("event", "routes"),
		slog.Int("routes", routes),
		slog.String("middlewares", summary),
	)
}

// serve blocks in bot.Start until ctx ends or the poller returns on its own.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	}
	bot.Stop()
	<-done
	if err := ctx.Err(); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func logMode(ctx context.Context, poller tele.Poller, took time.Duration) {
	attrs := []slog.Attr{
		slog.String("event", "mode"),
		slog.Duration("duration", logger.RoundMS(took)),
	}
	switch p := poller.(type) {
	case *tele.Webhook:
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
		)
	case *tele.LongPoller:
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Int("timeout_seconds", int(p.Timeout/time.Second)),
		)
	default:
		return
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "update delivery ready", attrs...)
}

// removeWebhook clears a webhook left by an earlier deployment, since
// getUpdates is refused while one is set. Pending updates are kept.
func removeWebhook(ctx context.Context, bot *tele.Bot) {
	attrs := []slog.Attr{slog.String("event", "delete_webhook")}
	if err := bot.RemoveWebhook(false); err != nil {
		logger.TG.LogAttrs(ctx, slog.LevelWarn, "failed to delete webhook",
			append(attrs, slog.String("err", err.Error()))...)
		return
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook deleted", attrs...)
}
