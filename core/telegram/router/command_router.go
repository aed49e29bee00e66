package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/citybot/core/logger"
	tg "github.com/m3rciful/citybot/core/telegram"
	"github.com/m3rciful/citybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// wrap applies the per-route middleware shared by command and text routes.
func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}

// CommandRoutes binds every registered slash command to its handler. Each
// update yields one handler.handled summary line.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}
	entries := reg.Commands()
	routes := make([]tg.Route, 0, len(entries))
	for _, e := range entries {
		name, h := normalizeHandlerName(e.Name), e.Handler
		routes = append(routes, tg.Route{
			Endpoint: e.Name,
			Handler: wrap(func(c tele.Context) error {
				return handleWithSummary(c, name, time.Now(), func() error { return h(c) })
			}),
		})
	}
	logger.TWire.Info("command routes ready",
		slog.String("event", "tg.wire"),
		slog.Int("commands", len(routes)),
	)
	return routes
}
