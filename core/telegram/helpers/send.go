package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/citybot/core/logger"
	"github.com/m3rciful/citybot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs the dispatcher SendText queues on; nil makes sends
// synchronous.
func SetDispatcher(d *sender.Dispatcher) {
	dispatcher.Store(d)
}

// SendText sends plain text to the chat of c. With a dispatcher installed the
// call is queued and SendText returns once it is accepted. A full queue is
// returned as sender.ErrQueueFull, since an inline send could overtake the
// chat's queued replies. A closed dispatcher has drained its queue, so the
// text is then sent inline.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var (
		sendOpts []any
		first    *tele.SendOptions
	)
	if len(opts) > 0 && opts[0] != nil {
		first = opts[0]
		sendOpts = append(sendOpts, first)
	}
	send := func() error { return c.Send(text, sendOpts...) }
	inline := func() error {
		countReply(c, first)
		return send()
	}

	d := dispatcher.Load()
	if d == nil {
		return inline()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, "send.text", "sendMessage", send)
	switch {
	case err == nil:
		countReply(c, first)
	case errors.Is(err, sender.ErrQueueClosed):
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", "send.text"),
			slog.String("err", err.Error()),
		)
		return inline()
	case errors.Is(err, sender.ErrQueueFull):
		logger.Warn(ctx, "tg.sender", "queue.full",
			slog.String("action", "send.text"),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return err
}
