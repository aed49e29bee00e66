package middleware

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func offlineContext(t *testing.T, text string) tele.Context {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("offline bot: %v", err)
	}
	return bot.NewContext(tele.Update{
		ID: 42,
		Message: &tele.Message{
			Text:   text,
			Chat:   &tele.Chat{ID: 7},
			Sender: &tele.User{ID: 9},
		},
	})
}

func TestRecoverMiddlewareConvertsPanic(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(offlineContext(t, "Погода")); !errors.Is(err, ErrPanic) {
		t.Fatalf("expected ErrPanic, got %v", err)
	}
}

func TestRecoverMiddlewarePassesErrors(t *testing.T) {
	want := errors.New("send failed")
	h := RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(offlineContext(t, "/start")); !errors.Is(err, want) {
		t.Fatalf("expected handler error, got %v", err)
	}
}
