package dialog

import "strings"

// Category is one kind of city information.
type Category string

const (
	CategoryOverview  Category = "overview"
	CategoryWeather   Category = "weather"
	CategoryTransport Category = "transport"
	CategorySights    Category = "sights"
	CategoryHistory   Category = "history"
	CategoryEvents    Category = "events"
)

// Categories lists every category in menu order.
var Categories = []Category{
	CategoryOverview,
	CategoryWeather,
	CategoryTransport,
	CategorySights,
	CategoryHistory,
	CategoryEvents,
}

// Reply keyboard labels.
const (
	LabelHome      = "🏠 Главное меню"
	LabelOverview  = "🔍 Найти город"
	LabelWeather   = "🌤 Погода и время"
	LabelTransport = "🚇 Транспорт"
	LabelSights    = "🏛 Достопримечательности"
	LabelHistory   = "📜 История города"
	LabelEvents    = "🎭 Мероприятия"
	LabelCancel    = "❌ Отмена"
)

// Slash commands understood by the bot.
const (
	CommandStart     = "/start"
	CommandInfo      = "/info"
	CommandWeather   = "/weather"
	CommandTransport = "/transport"
	CommandSights    = "/sights"
	CommandHistory   = "/history"
	CommandEvents    = "/events"
	CommandCancel    = "/cancel"
)

// Label returns the menu label that starts a query for c.
func (c Category) Label() string {
	switch c {
	case CategoryOverview:
		return LabelOverview
	case CategoryWeather:
		return LabelWeather
	case CategoryTransport:
		return LabelTransport
	case CategorySights:
		return LabelSights
	case CategoryHistory:
		return LabelHistory
	case CategoryEvents:
		return LabelEvents
	}
	return ""
}

// Command returns the slash command that starts a query for c.
func (c Category) Command() string {
	switch c {
	case CategoryOverview:
		return CommandInfo
	case CategoryWeather:
		return CommandWeather
	case CategoryTransport:
		return CommandTransport
	case CategorySights:
		return CommandSights
	case CategoryHistory:
		return CommandHistory
	case CategoryEvents:
		return CommandEvents
	}
	return ""
}

// Kind classifies a user interaction.
type Kind int

const (
	// KindText is free text: a city name or noise.
	KindText Kind = iota
	// KindHome returns to the main menu.
	KindHome
	// KindCategory starts a query for Action.Category.
	KindCategory
	// KindCancel aborts a pending query.
	KindCancel
	// KindUnknownCommand is a slash command the bot does not handle.
	KindUnknownCommand
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindHome:
		return "home"
	case KindCategory:
		return "category"
	case KindCancel:
		return "cancel"
	case KindUnknownCommand:
		return "unknown_command"
	}
	return "invalid"
}

// Action is a parsed user interaction. Text always keeps the original
// message so that menu labels typed while a city is awaited can be used as
// the city name.
type Action struct {
	Kind     Kind
	Category Category
	Command  bool
	Text     string
}

var labelActions = map[string]Action{
	LabelHome:      {Kind: KindHome},
	LabelOverview:  {Kind: KindCategory, Category: CategoryOverview},
	LabelWeather:   {Kind: KindCategory, Category: CategoryWeather},
	LabelTransport: {Kind: KindCategory, Category: CategoryTransport},
	LabelSights:    {Kind: KindCategory, Category: CategorySights},
	LabelHistory:   {Kind: KindCategory, Category: CategoryHistory},
	LabelEvents:    {Kind: KindCategory, Category: CategoryEvents},
	LabelCancel:    {Kind: KindCancel},
}

var commandActions = map[string]Action{
	CommandStart:     {Kind: KindHome},
	CommandInfo:      {Kind: KindCategory, Category: CategoryOverview},
	CommandWeather:   {Kind: KindCategory, Category: CategoryWeather},
	CommandTransport: {Kind: KindCategory, Category: CategoryTransport},
	CommandSights:    {Kind: KindCategory, Category: CategorySights},
	CommandHistory:   {Kind: KindCategory, Category: CategoryHistory},
	CommandEvents:    {Kind: KindCategory, Category: CategoryEvents},
	CommandCancel:    {Kind: KindCancel},
}

// ParseAction classifies raw message text. Labels must match exactly after
// trimming; commands ignore an @botname suffix and any arguments.
func ParseAction(text string) Action {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "/") {
		name := trimmed
		if i := strings.IndexAny(name, " \t\n"); i >= 0 {
			name = name[:i]
		}
		if i := strings.IndexByte(name, '@'); i >= 0 {
			name = name[:i]
		}
		act, ok := commandActions[strings.ToLower(name)]
		if !ok {
			act = Action{Kind: KindUnknownCommand}
		}
		act.Command = true
		act.Text = text
		return act
	}
	if act, ok := labelActions[trimmed]; ok {
		act.Text = text
		return act
	}
	return Action{Kind: KindText, Text: text}
}
