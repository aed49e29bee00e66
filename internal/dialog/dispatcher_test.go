package dialog

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/citybot/core/telegram/state"
	"github.com/m3rciful/citybot/internal/citydata"
)

const chat int64 = 100

func testCatalog(t *testing.T) citydata.Catalog {
	t.Helper()
	cities := map[string]citydata.City{
		"Москва": {
			Sights:      []string{"Красная площадь", "Большой театр"},
			Restaurants: []string{"Пушкин"},
			Weather:     citydata.WeatherRange{Min: 20, Max: 20, Descriptions: []string{"Солнечно"}},
			UTCOffset:   3,
			Transport: citydata.Transport{
				Subway: []string{"15 линий"},
				Bus:    []string{"700 маршрутов"},
				Taxi:   []string{"Яндекс Такси"},
			},
			History: citydata.History{
				Founded:      "1147",
				Founder:      "Юрий Долгорукий",
				ShortHistory: []string{"Первое упоминание"},
				FunFacts:     []string{"400 музеев"},
			},
			Events: citydata.Events{
				Concerts: []citydata.Event{{Title: "Вечер", Venue: "Зарядье", Date: "15.11", Price: "1500"}},
			},
		},
		"санкт-петербург": {
			Weather: citydata.WeatherRange{Min: 5, Max: 5, Descriptions: []string{"Дождь"}},
		},
	}
	sights := map[string]map[string]citydata.SightDescription{
		"москва": {
			"Красная площадь": {Description: "Главная площадь", Address: "Москва", Hours: "Круглосуточно", Admission: "Бесплатно"},
		},
	}
	cat, err := citydata.BuildCatalog(cities, sights)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return cat
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	now := time.Date(2026, 10, 19, 9, 5, 0, 0, time.UTC)
	p := citydata.NewProvider(testCatalog(t),
		citydata.WithClock(func() time.Time { return now }),
		citydata.WithRandSource(rand.NewPCG(7, 7)),
	)
	return NewDispatcher(state.NewMemoryManager(), p)
}

func single(t *testing.T, replies []Reply) Reply {
	t.Helper()
	if len(replies) != 1 {
		t.Fatalf("expected exactly one reply, got %d: %+v", len(replies), replies)
	}
	return replies[0]
}

func send(d *Dispatcher, text string) []Reply {
	return d.Handle(context.Background(), chat, ParseAction(text))
}

func TestIdleStartShowsWelcome(t *testing.T) {
	d := newTestDispatcher(t)
	r := single(t, send(d, "/start"))
	if r.Text != textWelcome || r.Keyboard != KeyboardMain {
		t.Fatalf("unexpected reply: %+v", r)
	}
	if got := d.State(chat); got != state.StateIdle {
		t.Fatalf("expected idle, got %s", got)
	}
}

func TestIdleFreeTextRepromptsMenu(t *testing.T) {
	d := newTestDispatcher(t)
	for _, text := range []string{"привет", LabelCancel} {
		r := single(t, send(d, text))
		if r.Text != "Пожалуйста, используйте кнопки меню." || r.Keyboard != KeyboardMain {
			t.Fatalf("%q: unexpected reply %+v", text, r)
		}
		if d.State(chat) != state.StateIdle {
			t.Fatalf("%q: state changed", text)
		}
	}
}

func TestIdleSilentCommands(t *testing.T) {
	d := newTestDispatcher(t)
	for _, text := range []string{"/cancel", "/help"} {
		if replies := send(d, text); len(replies) != 0 {
			t.Fatalf("%q: expected no reply, got %+v", text, replies)
		}
	}
}

func TestCategoryPrompts(t *testing.T) {
	prompts := map[Category]string{
		CategoryOverview:  "Пожалуйста, введите название города:",
		CategoryWeather:   "Пожалуйста, введите название города для получения информации о погоде и времени:",
		CategoryTransport: "Пожалуйста, введите название города для получения информации о транспорте:",
		CategorySights:    "Пожалуйста, введите название города для получения информации о достопримечательностях:",
		CategoryHistory:   "Пожалуйста, введите название города для получения исторической информации:",
		CategoryEvents:    "Пожалуйста, введите название города для получения информации о мероприятиях:",
	}
	for c, want := range prompts {
		for _, trigger := range []string{c.Label(), c.Command()} {
			d := newTestDispatcher(t)
			r := single(t, send(d, trigger))
			if r.Text != want || r.Keyboard != KeyboardCancel {
				t.Fatalf("%q: unexpected prompt %+v", trigger, r)
			}
			if got := d.State(chat); got != AwaitingState(c) {
				t.Fatalf("%q: expected %s, got %s", trigger, AwaitingState(c), got)
			}
		}
	}
}

func TestCancelWhileAwaiting(t *testing.T) {
	for _, cancel := range []string{"/cancel", LabelCancel} {
		d := newTestDispatcher(t)
		send(d, "/weather")
		r := single(t, send(d, cancel))
		if r.Text != "Поиск информации отменен." || r.Keyboard != KeyboardMain {
			t.Fatalf("%q: unexpected reply %+v", cancel, r)
		}
		if d.State(chat) != state.StateIdle {
			t.Fatalf("%q: expected idle after cancel", cancel)
		}
	}
}

func TestStartWhileAwaitingResets(t *testing.T) {
	d := newTestDispatcher(t)
	send(d, "/history")
	r := single(t, send(d, "/start"))
	if r.Text != textWelcome {
		t.Fatalf("unexpected reply: %+v", r)
	}
	if d.State(chat) != state.StateIdle {
		t.Fatalf("expected idle")
	}
}

func TestOtherCommandsIgnoredWhileAwaiting(t *testing.T) {
	d := newTestDispatcher(t)
	send(d, "/transport")
	if replies := send(d, "/events"); len(replies) != 0 {
		t.Fatalf("expected command to be ignored, got %+v", replies)
	}
	if d.State(chat) != AwaitingState(CategoryTransport) {
		t.Fatalf("state must be unchanged, got %s", d.State(chat))
	}
}

func TestMenuLabelWhileAwaitingIsCityName(t *testing.T) {
	d := newTestDispatcher(t)
	send(d, "/info")
	r := single(t, send(d, LabelWeather))
	want := "Извините, информация о городе \"" + TitleCase(LabelWeather) + "\" не найдена."
	if r.Text != want {
		t.Fatalf("unexpected reply %q, want %q", r.Text, want)
	}
	if d.State(chat) != state.StateIdle {
		t.Fatalf("expected idle")
	}
}

func TestOverviewResult(t *testing.T) {
	d := newTestDispatcher(t)
	send(d, LabelOverview)
	r := single(t, send(d, "москва"))
	want := "🏙 Информация о городе Москва:\n\n" +
		"🏛 Достопримечательности:\n• Красная площадь\n• Большой театр\n" +
		"\n🍽 Рестораны:\n• Пушкин\n" +
		"\n🌤 Погода:\n• Температура: 20°C\n• Солнечно"
	if r.Text != want || r.Keyboard != KeyboardMain {
		t.Fatalf("unexpected overview:\n%q\nwant:\n%q", r.Text, want)
	}
	if d.State(chat) != state.StateIdle {
		t.Fatalf("expected idle after result")
	}
}

func TestWeatherResult(t *testing.T) {
	d := newTestDispatcher(t)
	send(d, "/weather")
	r := single(t, send(d, "МОСКВА"))
	want := "🏙 Москва\n\n📅 Дата: 19.10.2026\n🕐 Время: 12:05\n\n🌤 Погода:\n• Температура: 20°C\n• Солнечно"
	if r.Text != want {
		t.Fatalf("unexpected weather:\n%q\nwant:\n%q", r.Text, want)
	}
}

func TestTransportResult(t *testing.T) {
	d := newTestDispatcher(t)
	send(d, "/transport")
	r := single(t, send(d, "Москва"))
	want := "🏙 Транспорт в городе Москва:\n\n🚇 Метро:\n• 15 линий\n\n🚌 Автобусы:\n• 700 маршрутов\n\n🚕 Такси:\n• Яндекс Такси\n"
	if r.Text != want {
		t.Fatalf("unexpected transport:\n%q", r.Text)
	}
}

func TestSightsResult(t *testing.T) {
	d := newTestDispatcher(t)
	send(d, LabelSights)
	r := single(t, send(d, "москва"))
	want := "🏛 Достопримечательности города Москва:\n\n" +
		"🏛 Красная площадь\n📝 Главная площадь\n📍 Москва\n🕒 Время работы: Круглосуточно\n💰 Стоимость: Бесплатно\n\n"
	if r.Text != want {
		t.Fatalf("unexpected sights:\n%q", r.Text)
	}

	send(d, LabelSights)
	r = single(t, send(d, "санкт-петербург"))
	if r.Text != "Извините, информация о достопримечательностях города \"Санкт-Петербург\" не найдена." {
		t.Fatalf("unexpected sights not-found: %q", r.Text)
	}
}

func TestHistoryResult(t *testing.T) {
	d := newTestDispatcher(t)
	send(d, "/history")
	r := single(t, send(d, "москва"))
	want := "📜 История города Москва\n\n🏛 Основан в 1147\n👑 Основатель: Юрий Долгорукий\n\n" +
		"📖 Краткая история:\n• Первое упоминание\n\n🎯 Интересные факты:\n• 400 музеев\n"
	if r.Text != want {
		t.Fatalf("unexpected history:\n%q", r.Text)
	}
}

func TestEventsResultRendersEmptySections(t *testing.T) {
	d := newTestDispatcher(t)
	send(d, "/events")
	r := single(t, send(d, "москва"))
	want := "🎭 Мероприятия в городе Москва\n\n" +
		"🎵 Концерты:\n• Вечер\n  📍 Зарядье\n  📅 15.11\n  💰 1500\n\n" +
		"🎨 Выставки:\n" +
		"🎭 Театр:\n"
	if r.Text != want {
		t.Fatalf("unexpected events:\n%q", r.Text)
	}
}

func TestNotFoundMessages(t *testing.T) {
	want := map[Category]string{
		CategoryOverview:  "Извините, информация о городе \"Атлантида\" не найдена.",
		CategoryWeather:   "Извините, информация о городе \"Атлантида\" не найдена.",
		CategoryTransport: "Извините, информация о транспорте в городе \"Атлантида\" не найдена.",
		CategorySights:    "Извините, информация о достопримечательностях города \"Атлантида\" не найдена.",
		CategoryHistory:   "Извините, историческая информация о городе \"Атлантида\" не найдена.",
		CategoryEvents:    "Извините, информация о мероприятиях в городе \"Атлантида\" не найдена.",
	}
	for c, text := range want {
		d := newTestDispatcher(t)
		send(d, c.Command())
		r := single(t, send(d, "атлантида"))
		if r.Text != text || r.Keyboard != KeyboardMain {
			t.Fatalf("%s: unexpected reply %+v", c, r)
		}
		if d.State(chat) != state.StateIdle {
			t.Fatalf("%s: expected idle after not found", c)
		}
	}
}

func TestNotFoundEchoesCityAsTyped(t *testing.T) {
	cases := map[string]string{
		"  ":            "Извините, информация о достопримечательностях города \"  \" не найдена.",
		" новый  город": "Извините, информация о достопримечательностях города \" Новый  Город\" не найдена.",
	}
	for typed, want := range cases {
		d := newTestDispatcher(t)
		send(d, CategorySights.Command())
		if r := single(t, send(d, typed)); r.Text != want {
			t.Fatalf("%q: reply %q, want %q", typed, r.Text, want)
		}
	}
}

type failingProvider struct{ Provider }

func (failingProvider) Overview(string) (citydata.Overview, error) {
	return citydata.Overview{}, errors.New("backend down")
}

func TestUnexpectedProviderErrorIsNotFound(t *testing.T) {
	d := NewDispatcher(state.NewMemoryManager(), failingProvider{})
	d.Handle(context.Background(), chat, ParseAction("/info"))
	r := single(t, d.Handle(context.Background(), chat, ParseAction("Москва")))
	if !strings.HasPrefix(r.Text, "Извините, информация о городе") {
		t.Fatalf("unexpected reply: %q", r.Text)
	}
}

func TestConversationsAreIndependent(t *testing.T) {
	d := newTestDispatcher(t)
	d.Handle(context.Background(), 1, ParseAction("/weather"))
	d.Handle(context.Background(), 2, ParseAction("/history"))
	if d.State(1) != AwaitingState(CategoryWeather) || d.State(2) != AwaitingState(CategoryHistory) {
		t.Fatalf("states leaked between conversations: %s %s", d.State(1), d.State(2))
	}
}

func TestConcurrentConversations(t *testing.T) {
	d := newTestDispatcher(t)
	var wg sync.WaitGroup
	for id := int64(1); id <= 32; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				d.Handle(context.Background(), id, ParseAction("/weather"))
				replies := d.Handle(context.Background(), id, ParseAction("москва"))
				if len(replies) != 1 || !strings.HasPrefix(replies[0].Text, "🏙 Москва") {
					t.Errorf("conversation %d: unexpected replies %+v", id, replies)
					return
				}
			}
		}(id)
	}
	wg.Wait()
}
