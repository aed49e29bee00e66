package telegram

import (
	"net"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/citybot/core/config"

	tele "gopkg.in/telebot.v4"
)

// DefaultLongPollTimeout is used when the configured timeout is zero.
const DefaultLongPollTimeout = 10 * time.Second

// DefaultAllowedUpdates limits delivery to plain messages; the bot has no
// inline keyboards or inline queries.
var DefaultAllowedUpdates = []string{"message"}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode        string
	LongPoll       time.Duration
	WebhookListen  string
	WebhookPort    int
	WebhookURL     string
	AllowedUpdates []string
}

// PollerOptionsFrom derives poller options from the core configuration.
func PollerOptionsFrom(cfg *coreconfig.Config) PollerOptions {
	return PollerOptions{
		RunMode:       cfg.Telegram.RunMode,
		LongPoll:      time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second,
		WebhookListen: cfg.Webhook.Listen,
		WebhookPort:   cfg.Webhook.Port,
		WebhookURL:    cfg.Webhook.URL,
	}
}

// BuildPoller returns a webhook receiver for run mode "webhook" and a long
// poller otherwise.
func BuildPoller(opts PollerOptions) tele.Poller {
	allowed := opts.AllowedUpdates
	if len(allowed) == 0 {
		allowed = DefaultAllowedUpdates
	}
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			Listen:         net.JoinHostPort(opts.WebhookListen, strconv.Itoa(opts.WebhookPort)),
			AllowedUpdates: allowed,
			Endpoint:       &tele.WebhookEndpoint{PublicURL: opts.WebhookURL},
		}
	}
	return &tele.LongPoller{
		Timeout:        opts.longPollTimeout(),
		AllowedUpdates: allowed,
	}
}

func (o PollerOptions) longPollTimeout() time.Duration {
	if o.LongPoll <= 0 {
		return DefaultLongPollTimeout
	}
	return o.LongPoll
}
