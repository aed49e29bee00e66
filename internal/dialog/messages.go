package dialog

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	textWelcome = "Привет! Я бот для получения информации о городах.\n" +
		"Нажмите \"🔍 Найти город\" для получения информации о городе."
	textUseMenu   = "Пожалуйста, используйте кнопки меню."
	textCancelled = "Поиск информации отменен."
)

func promptFor(c Category) string {
	switch c {
	case CategoryWeather:
		return "Пожалуйста, введите название города для получения информации о погоде и времени:"
	case CategoryTransport:
		return "Пожалуйста, введите название города для получения информации о транспорте:"
	case CategorySights:
		return "Пожалуйста, введите название города для получения информации о достопримечательностях:"
	case CategoryHistory:
		return "Пожалуйста, введите название города для получения исторической информации:"
	case CategoryEvents:
		return "Пожалуйста, введите название города для получения информации о мероприятиях:"
	}
	return "Пожалуйста, введите название города:"
}

func notFoundFor(c Category, city string) string {
	switch c {
	case CategoryTransport:
		return fmt.Sprintf("Извините, информация о транспорте в городе \"%s\" не найдена.", city)
	case CategorySights:
		return fmt.Sprintf("Извините, информация о достопримечательностях города \"%s\" не найдена.", city)
	case CategoryHistory:
		return fmt.Sprintf("Извините, историческая информация о городе \"%s\" не найдена.", city)
	case CategoryEvents:
		return fmt.Sprintf("Извините, информация о мероприятиях в городе \"%s\" не найдена.", city)
	}
	return fmt.Sprintf("Извините, информация о городе \"%s\" не найдена.", city)
}

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest, so "санкт-петербург" becomes "Санкт-Петербург". Spacing is kept as
// typed.
func TitleCase(s string) string {
	// Casers keep state and are not safe for concurrent use.
	return cases.Title(language.Russian).String(s)
}
