package middleware

import (
	"log/slog"
	"sync"

	"github.com/m3rciful/citybot/core/logger"
	tghelpers "github.com/m3rciful/citybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers the last few update ids so an update passing through
// both the global and a per-route LoggerMiddleware is logged once.
type seenUpdates struct {
	mu   sync.Mutex
	ids  [64]int
	next int
}

func (s *seenUpdates) firstTime(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seen := range s.ids {
		if seen == id && id != 0 {
			return false
		}
	}
	s.ids[s.next] = id
	s.next = (s.next + 1) % len(s.ids)
	return true
}

var received seenUpdates

// LoggerMiddleware derives the request context (rid, update, user and chat
// ids) for downstream handlers and logs a sampled update.received line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		meta := logger.MetaFrom(ctx)
		c.Set("rid", meta.RID)

		if received.firstTime(meta.UpdateID) && logger.ShouldSampleDebug() {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if text := c.Text(); text != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(text, 256)))
			}
			logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", attrs...)
		}
		return next(c)
	}
}
