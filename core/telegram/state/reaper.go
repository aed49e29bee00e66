package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/citybot/core/logger"
)

const defaultReapInterval = time.Minute

// StartReaper periodically expires sessions idle for longer than ttl until ctx
// is done. A non-positive ttl disables expiry and no goroutine is started.
func StartReaper(ctx context.Context, mgr Manager, ttl, interval time.Duration) bool {
	if mgr == nil || ttl <= 0 {
		return false
	}
	if interval <= 0 {
		interval = defaultReapInterval
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		logger.Info(ctx, "tg.state", "reaper.start",
			slog.Duration("ttl", ttl),
			slog.Duration("interval", interval),
		)
		for {
			select {
			case <-ticker.C:
				if n := mgr.Expire(ttl); n > 0 {
					logger.Debug(ctx, "tg.state", "reaper.expired",
						slog.Int("expired", n),
						slog.Int("sessions", mgr.Len()),
					)
				}
			case <-ctx.Done():
				logger.Info(ctx, "tg.state", "reaper.stop")
				return
			}
		}
	}()
	return true
}
