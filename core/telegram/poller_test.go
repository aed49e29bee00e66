package telegram

import (
	"testing"
	"time"

	coreconfig "github.com/m3rciful/citybot/core/config"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerLongPollDefaults(t *testing.T) {
	p, ok := BuildPoller(PollerOptions{RunMode: coreconfig.RunModeLongpoll}).(*tele.LongPoller)
	if !ok {
		t.Fatalf("expected long poller")
	}
	if p.Timeout != DefaultLongPollTimeout {
		t.Fatalf("unexpected timeout %v", p.Timeout)
	}
	if len(p.AllowedUpdates) != 1 || p.AllowedUpdates[0] != "message" {
		t.Fatalf("unexpected allowed updates %v", p.AllowedUpdates)
	}
}

func TestBuildPollerWebhook(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{RunMode: "WEBHOOK"},
		Webhook:  coreconfig.WebhookConfig{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.org/hook"},
	}
	p, ok := BuildPoller(PollerOptionsFrom(cfg)).(*tele.Webhook)
	if !ok {
		t.Fatalf("expected webhook")
	}
	if p.Listen != "0.0.0.0:8443" {
		t.Fatalf("unexpected listen address %q", p.Listen)
	}
	if p.Endpoint == nil || p.Endpoint.PublicURL != cfg.Webhook.URL {
		t.Fatalf("unexpected endpoint %+v", p.Endpoint)
	}
}

func TestPollerOptionsFromTimeout(t *testing.T) {
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{LongPollTimeoutSeconds: 25}}
	p := BuildPoller(PollerOptionsFrom(cfg)).(*tele.LongPoller)
	if p.Timeout != 25*time.Second {
		t.Fatalf("unexpected timeout %v", p.Timeout)
	}
}
