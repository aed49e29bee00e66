package middleware

import (
	tghelpers "github.com/m3rciful/citybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// MessageMetricsMiddleware installs per-update reply counters that
// tghelpers.SendText increments.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.AttachCounters(c)
		return next(c)
	}
}

// GetCounters returns how many replies the update produced and whether any of
// them carried a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	rc := tghelpers.Counters(c)
	if rc == nil {
		return 0, false
	}
	return rc.Messages(), rc.Keyboard()
}
