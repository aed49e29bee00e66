package router

import (
	"time"

	tg "github.com/m3rciful/citybot/core/telegram"
	tghelpers "github.com/m3rciful/citybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// FSM reports whether a conversation is in the middle of a dialog.
type FSM interface {
	InProgress(id int64) bool
}

// TextOptions controls how text updates are dispatched.
type TextOptions struct {
	// InProgress receives every text while the conversation has an active state.
	InProgress tele.HandlerFunc
	// UnknownText handles text that matched neither a command alias nor the
	// registry fallback.
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the OnText route. Precedence: active dialog, command
// alias, registry fallback, UnknownText. Text nobody handles is dropped.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	pick := func(c tele.Context) (string, tele.HandlerFunc) {
		if fsm != nil && opts.InProgress != nil && fsm.InProgress(tghelpers.ConversationID(c)) {
			return "fsm", opts.InProgress
		}
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok {
				return normalizeHandlerName(key), cmd.Handler
			}
			if fb := reg.TextFallback(); fb != nil {
				return "fallback", fb
			}
		}
		return "unknown_text", opts.UnknownText
	}

	handler := func(c tele.Context) error {
		start := time.Now()
		name, h := pick(c)
		return handleWithSummary(c, name, start, func() error {
			if h == nil {
				return nil
			}
			return h(c)
		})
	}
	return []tg.Route{{Endpoint: tele.OnText, Handler: wrap(handler)}}
}
