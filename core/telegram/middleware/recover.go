package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/citybot/core/logger"
	tghelpers "github.com/m3rciful/citybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ErrPanic is returned for an update whose handler panicked.
var ErrPanic = errors.New("telegram: handler panicked")

// RecoverMiddleware turns a handler panic into ErrPanic so one broken update
// cannot stop polling. The stack goes to the log together with the request id.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			ctx := tghelpers.BuildContext(c)
			logger.Error(ctx, "tg", "tg.panic",
				slog.String("err", fmt.Sprint(r)),
				slog.Int64("conversation_id", tghelpers.ConversationID(c)),
				slog.String("stack", string(debug.Stack())),
			)
			err = ErrPanic
		}()
		return next(c)
	}
}
