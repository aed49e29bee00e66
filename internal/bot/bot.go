// Package bot connects the city query dialog to Telegram.
package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/citybot/core/logger"
	tg "github.com/m3rciful/citybot/core/telegram"
	"github.com/m3rciful/citybot/core/telegram/commands"
	tghelpers "github.com/m3rciful/citybot/core/telegram/helpers"
	"github.com/m3rciful/citybot/core/telegram/router"
	"github.com/m3rciful/citybot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// Dialog handles one parsed interaction for a conversation.
type Dialog interface {
	Handle(ctx context.Context, conversationID int64, action dialog.Action) []dialog.Reply
}

// Bot owns the command registry and routes for the city bot.
type Bot struct {
	dialog   Dialog
	sessions router.FSM
	registry *tg.Registry
}

// New registers every command and menu label.
func New(d Dialog, sessions router.FSM) (*Bot, error) {
	b := &Bot{dialog: d, sessions: sessions, registry: tg.NewRegistry()}
	if err := b.register(); err != nil {
		return nil, err
	}
	return b, nil
}

// Registry exposes the registered commands.
func (b *Bot) Registry() *tg.Registry { return b.registry }

var commandDescriptions = map[string]string{
	dialog.CommandStart:     "Главное меню",
	dialog.CommandInfo:      "Информация о городе",
	dialog.CommandWeather:   "Погода и время",
	dialog.CommandTransport: "Транспорт",
	dialog.CommandSights:    "Достопримечательности",
	dialog.CommandHistory:   "История города",
	dialog.CommandEvents:    "Мероприятия",
	dialog.CommandCancel:    "Отменить поиск",
}

func (b *Bot) register() error {
	add := func(name, label string) error {
		return b.registry.RegisterCommand(name, commands.Command{
			Handler:     b.handle,
			Description: commandDescriptions[name],
			Aliases:     []string{label},
		})
	}
	errs := []error{add(dialog.CommandStart, dialog.LabelHome)}
	for _, c := range dialog.Categories {
		errs = append(errs, add(c.Command(), c.Label()))
	}
	errs = append(errs, add(dialog.CommandCancel, dialog.LabelCancel))
	b.registry.SetTextFallback(b.handle)
	return errors.Join(errs...)
}

// Routes returns the command routes followed by the text route. Every path
// ends in the dialog, which owns the state rules.
func (b *Bot) Routes() []tg.Route {
	routes := router.CommandRoutes(b.registry)
	return append(routes, router.TextRoutes(b.sessions, b.registry, router.TextOptions{
		InProgress: b.handle,
	})...)
}

// handle feeds one update into the dialog. Updates with neither a chat nor a
// sender belong to no conversation and are dropped.
func (b *Bot) handle(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	id := tghelpers.ConversationID(c)
	if id == 0 {
		logger.Debug(ctx, "tg", "update.skipped",
			slog.String("reason", "no_conversation"),
		)
		return nil
	}
	replies := b.dialog.Handle(ctx, id, dialog.ParseAction(c.Text()))
	for _, r := range replies {
		if err := tghelpers.SendText(c, r.Text, &tele.SendOptions{ReplyMarkup: markupFor(r.Keyboard)}); err != nil {
			logger.Warn(ctx, "tg", "reply.failed",
				slog.String("err", err.Error()),
			)
			return err
		}
	}
	return nil
}
