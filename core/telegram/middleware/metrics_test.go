package middleware

import (
	"testing"

	tghelpers "github.com/m3rciful/citybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func TestGetCountersWithoutMiddleware(t *testing.T) {
	msgs, kb := GetCounters(offlineContext(t, "Москва"))
	if msgs != 0 || kb {
		t.Fatalf("expected zero counters, got %d %v", msgs, kb)
	}
}

func TestMessageMetricsMiddlewareInstallsCounters(t *testing.T) {
	c := offlineContext(t, "Москва")
	var seen *tghelpers.ReplyCounters
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		seen = tghelpers.Counters(c)
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if seen == nil {
		t.Fatalf("counters not installed")
	}
	if msgs, kb := GetCounters(c); msgs != 0 || kb {
		t.Fatalf("fresh counters expected, got %d %v", msgs, kb)
	}
}
