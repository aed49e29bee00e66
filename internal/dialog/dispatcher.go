package dialog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/citybot/core/logger"
	"github.com/m3rciful/citybot/core/telegram/state"
	"github.com/m3rciful/citybot/internal/citydata"
)

const (
	component        = "dialog"
	awaitStatePrefix = "await_city."
)

// Keyboard selects the reply keyboard attached to a message.
type Keyboard int

const (
	// KeyboardMain is the full category menu.
	KeyboardMain Keyboard = iota
	// KeyboardCancel carries only the cancel button.
	KeyboardCancel
)

// Reply is one outbound message.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// Provider resolves city data for each category.
type Provider interface {
	Overview(city string) (citydata.Overview, error)
	WeatherAndTime(city string) (citydata.WeatherReport, error)
	Transport(city string) (citydata.Transport, error)
	Sights(city string) ([]citydata.Sight, error)
	History(city string) (citydata.History, error)
	Events(city string) (citydata.Events, error)
}

// AwaitingState is the session state while a city name for c is expected.
func AwaitingState(c Category) state.State {
	return state.State(awaitStatePrefix + string(c))
}

// AwaitedCategory reports which category st is waiting for.
func AwaitedCategory(st state.State) (Category, bool) {
	s := string(st)
	if !strings.HasPrefix(s, awaitStatePrefix) {
		return "", false
	}
	c := Category(strings.TrimPrefix(s, awaitStatePrefix))
	if c.Label() == "" {
		return "", false
	}
	return c, true
}

// Dispatcher drives the per-conversation city query flow.
type Dispatcher struct {
	sessions state.Manager
	data     Provider
}

// NewDispatcher builds a dispatcher over the given session store and data.
func NewDispatcher(sessions state.Manager, data Provider) *Dispatcher {
	return &Dispatcher{sessions: sessions, data: data}
}

// State returns the current session state of a conversation.
func (d *Dispatcher) State(conversationID int64) state.State {
	return d.sessions.GetState(conversationID)
}

// Handle applies action to the conversation and returns the replies to send,
// possibly none. Calls for the same conversation are serialized.
func (d *Dispatcher) Handle(ctx context.Context, conversationID int64, action Action) []Reply {
	var replies []Reply
	d.sessions.Transition(conversationID, func(cur state.State) state.State {
		next, out := d.step(ctx, cur, action)
		replies = out
		if next != cur {
			logger.Debug(ctx, component, "state.change",
				slog.String("from", string(cur)),
				slog.String("state", string(next)),
				slog.String("action", action.Kind.String()),
			)
		}
		return next
	})
	return replies
}

func (d *Dispatcher) step(ctx context.Context, cur state.State, action Action) (state.State, []Reply) {
	if awaited, ok := AwaitedCategory(cur); ok {
		return d.stepAwaiting(ctx, cur, awaited, action)
	}
	return d.stepIdle(action)
}

func (d *Dispatcher) stepIdle(action Action) (state.State, []Reply) {
	switch action.Kind {
	case KindCategory:
		return AwaitingState(action.Category), []Reply{{Text: promptFor(action.Category), Keyboard: KeyboardCancel}}
	case KindHome:
		return state.StateIdle, []Reply{{Text: textWelcome, Keyboard: KeyboardMain}}
	case KindCancel:
		if action.Command {
			return state.StateIdle, nil
		}
		return state.StateIdle, []Reply{{Text: textUseMenu, Keyboard: KeyboardMain}}
	case KindUnknownCommand:
		return state.StateIdle, nil
	}
	return state.StateIdle, []Reply{{Text: textUseMenu, Keyboard: KeyboardMain}}
}

func (d *Dispatcher) stepAwaiting(ctx context.Context, cur state.State, c Category, action Action) (state.State, []Reply) {
	switch {
	case action.Kind == KindCancel:
		return state.StateIdle, []Reply{{Text: textCancelled, Keyboard: KeyboardMain}}
	case action.Kind == KindHome && action.Command:
		return state.StateIdle, []Reply{{Text: textWelcome, Keyboard: KeyboardMain}}
	case action.Command:
		return cur, nil
	}
	return state.StateIdle, []Reply{{Text: d.resolve(ctx, c, action.Text), Keyboard: KeyboardMain}}
}

func (d *Dispatcher) resolve(ctx context.Context, c Category, typed string) string {
	title := TitleCase(typed)
	text, err := d.lookup(c, typed, title)
	found := err == nil
	if err != nil && !errors.Is(err, citydata.ErrCityNotFound) {
		logger.Warn(ctx, component, "city.lookup",
			slog.String("status", "fail"),
			slog.String("category", string(c)),
			slog.String("city", citydata.NormalizeCity(typed)),
			slog.String("err", err.Error()),
		)
	} else {
		logger.Info(ctx, component, "city.lookup",
			slog.String("category", string(c)),
			slog.String("city", citydata.NormalizeCity(typed)),
			slog.Bool("found", found),
		)
	}
	if !found {
		return notFoundFor(c, title)
	}
	return text
}

func (d *Dispatcher) lookup(c Category, city, title string) (string, error) {
	switch c {
	case CategoryWeather:
		rep, err := d.data.WeatherAndTime(city)
		if err != nil {
			return "", err
		}
		return formatWeather(title, rep), nil
	case CategoryTransport:
		tr, err := d.data.Transport(city)
		if err != nil {
			return "", err
		}
		return formatTransport(title, tr), nil
	case CategorySights:
		sights, err := d.data.Sights(city)
		if err != nil {
			return "", err
		}
		return formatSights(title, sights), nil
	case CategoryHistory:
		h, err := d.data.History(city)
		if err != nil {
			return "", err
		}
		return formatHistory(title, h), nil
	case CategoryEvents:
		ev, err := d.data.Events(city)
		if err != nil {
			return "", err
		}
		return formatEvents(title, ev), nil
	}
	ov, err := d.data.Overview(city)
	if err != nil {
		return "", err
	}
	return formatOverview(title, ov), nil
}
