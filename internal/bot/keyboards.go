package bot

import (
	"github.com/m3rciful/citybot/core/telegram/keyboard"
	"github.com/m3rciful/citybot/internal/dialog"

	tele "gopkg.in/telebot.v4"
)

// MainMenu is the category keyboard shown whenever no query is pending.
func MainMenu() *tele.ReplyMarkup {
	return keyboard.Rows(
		[]string{dialog.LabelHome},
		[]string{dialog.LabelOverview, dialog.LabelWeather},
		[]string{dialog.LabelTransport, dialog.LabelSights},
		[]string{dialog.LabelHistory, dialog.LabelEvents},
	)
}

// CancelMenu is shown while a city name is awaited.
func CancelMenu() *tele.ReplyMarkup {
	return keyboard.Single(dialog.LabelCancel)
}

func markupFor(kb dialog.Keyboard) *tele.ReplyMarkup {
	if kb == dialog.KeyboardCancel {
		return CancelMenu()
	}
	return MainMenu()
}
