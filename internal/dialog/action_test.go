package dialog

import "testing"

func TestParseAction(t *testing.T) {
	cases := []struct {
		in       string
		kind     Kind
		category Category
		command  bool
	}{
		{"/start", KindHome, "", true},
		{"/start@city_info_bot", KindHome, "", true},
		{"/info", KindCategory, CategoryOverview, true},
		{"/WEATHER now", KindCategory, CategoryWeather, true},
		{"/transport", KindCategory, CategoryTransport, true},
		{"/sights", KindCategory, CategorySights, true},
		{"/history", KindCategory, CategoryHistory, true},
		{"/events", KindCategory, CategoryEvents, true},
		{"/cancel", KindCancel, "", true},
		{"/help", KindUnknownCommand, "", true},
		{LabelHome, KindHome, "", false},
		{LabelOverview, KindCategory, CategoryOverview, false},
		{" " + LabelWeather + " ", KindCategory, CategoryWeather, false},
		{LabelTransport, KindCategory, CategoryTransport, false},
		{LabelSights, KindCategory, CategorySights, false},
		{LabelHistory, KindCategory, CategoryHistory, false},
		{LabelEvents, KindCategory, CategoryEvents, false},
		{LabelCancel, KindCancel, "", false},
		{"Москва", KindText, "", false},
		{"", KindText, "", false},
	}
	for _, tc := range cases {
		got := ParseAction(tc.in)
		if got.Kind != tc.kind || got.Category != tc.category || got.Command != tc.command {
			t.Fatalf("ParseAction(%q) = %+v, want kind=%s category=%q command=%v", tc.in, got, tc.kind, tc.category, tc.command)
		}
		if got.Text != tc.in {
			t.Fatalf("ParseAction(%q) lost original text: %q", tc.in, got.Text)
		}
	}
}

func TestCategoryLabelsAndCommandsRoundTrip(t *testing.T) {
	for _, c := range Categories {
		if act := ParseAction(c.Label()); act.Kind != KindCategory || act.Category != c {
			t.Fatalf("label of %s parses to %+v", c, act)
		}
		if act := ParseAction(c.Command()); act.Kind != KindCategory || act.Category != c {
			t.Fatalf("command of %s parses to %+v", c, act)
		}
		if got, ok := AwaitedCategory(AwaitingState(c)); !ok || got != c {
			t.Fatalf("awaiting state of %s does not round trip", c)
		}
	}
	if _, ok := AwaitedCategory("await_city.weather_forecast"); ok {
		t.Fatalf("unknown category must not be awaited")
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"москва":          "Москва",
		"санкт-петербург": "Санкт-Петербург",
		"НИЖНИЙ НОВГОРОД": "Нижний Новгород",
		"  казань ":       "  Казань ",
	}
	for in, want := range cases {
		if got := TitleCase(in); got != want {
			t.Fatalf("TitleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
