package dialog

import (
	"fmt"
	"strings"

	"github.com/m3rciful/citybot/internal/citydata"
)

func writeBullets(b *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "• %s\n", it)
	}
}

func formatOverview(city string, ov citydata.Overview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏙 Информация о городе %s:\n\n", city)
	b.WriteString("🏛 Достопримечательности:\n")
	writeBullets(&b, ov.Sights)
	b.WriteString("\n🍽 Рестораны:\n")
	writeBullets(&b, ov.Restaurants)
	b.WriteString("\n🌤 Погода:\n")
	fmt.Fprintf(&b, "• Температура: %d°C\n", ov.Weather.Temperature)
	fmt.Fprintf(&b, "• %s", ov.Weather.Description)
	return b.String()
}

func formatWeather(city string, rep citydata.WeatherReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏙 %s\n\n", city)
	fmt.Fprintf(&b, "📅 Дата: %s\n", rep.Date)
	fmt.Fprintf(&b, "🕐 Время: %s\n\n", rep.Time)
	b.WriteString("🌤 Погода:\n")
	fmt.Fprintf(&b, "• Температура: %d°C\n", rep.Weather.Temperature)
	fmt.Fprintf(&b, "• %s", rep.Weather.Description)
	return b.String()
}

func formatTransport(city string, tr citydata.Transport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏙 Транспорт в городе %s:\n\n", city)
	b.WriteString("🚇 Метро:\n")
	writeBullets(&b, tr.Subway)
	b.WriteString("\n🚌 Автобусы:\n")
	writeBullets(&b, tr.Bus)
	b.WriteString("\n🚕 Такси:\n")
	writeBullets(&b, tr.Taxi)
	return b.String()
}

func formatSights(city string, sights []citydata.Sight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏛 Достопримечательности города %s:\n\n", city)
	for _, s := range sights {
		fmt.Fprintf(&b, "🏛 %s\n", s.Name)
		fmt.Fprintf(&b, "📝 %s\n", s.Description)
		fmt.Fprintf(&b, "📍 %s\n", s.Address)
		fmt.Fprintf(&b, "🕒 Время работы: %s\n", s.Hours)
		fmt.Fprintf(&b, "💰 Стоимость: %s\n\n", s.Admission)
	}
	return b.String()
}

func formatHistory(city string, h citydata.History) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📜 История города %s\n\n", city)
	fmt.Fprintf(&b, "🏛 Основан в %s\n", h.Founded)
	fmt.Fprintf(&b, "👑 Основатель: %s\n\n", h.Founder)
	b.WriteString("📖 Краткая история:\n")
	writeBullets(&b, h.ShortHistory)
	b.WriteString("\n🎯 Интересные факты:\n")
	writeBullets(&b, h.FunFacts)
	return b.String()
}

func formatEvents(city string, ev citydata.Events) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎭 Мероприятия в городе %s\n\n", city)
	sections := []struct {
		header string
		items  []citydata.Event
	}{
		{"🎵 Концерты:\n", ev.Concerts},
		{"🎨 Выставки:\n", ev.Exhibitions},
		{"🎭 Театр:\n", ev.Theater},
	}
	for _, sec := range sections {
		b.WriteString(sec.header)
		for _, e := range sec.items {
			fmt.Fprintf(&b, "• %s\n", e.Title)
			fmt.Fprintf(&b, "  📍 %s\n", e.Venue)
			fmt.Fprintf(&b, "  📅 %s\n", e.Date)
			fmt.Fprintf(&b, "  💰 %s\n\n", e.Price)
		}
	}
	return b.String()
}
