package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/citybot/core/logger"
	"github.com/m3rciful/citybot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrInvalidCommand rejects commands without a slash name, handler or description.
	ErrInvalidCommand = errors.New("telegram: invalid command")
	// ErrDuplicateCommand rejects a second registration of a name or alias.
	ErrDuplicateCommand = errors.New("telegram: duplicate command")
)

// Registry keeps commands in registration order, which is also the order of
// the Telegram command menu.
type Registry struct {
	entries      []commands.Entry
	byName       map[string]int
	byAlias      map[string]int
	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]int{}, byAlias: map[string]int{}}
}

// RegisterCommand adds cmd under name, which must start with "/".
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	switch {
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		return fmt.Errorf("%w: %q needs a slash prefix", ErrInvalidCommand, name)
	case cmd.Handler == nil || cmd.Description == "":
		return fmt.Errorf("%w: %s needs a handler and a description", ErrInvalidCommand, name)
	}
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
	}
	for _, alias := range cmd.Aliases {
		if _, taken := r.byAlias[alias]; taken {
			return fmt.Errorf("%w: alias %q", ErrDuplicateCommand, alias)
		}
	}

	idx := len(r.entries)
	r.entries = append(r.entries, commands.Entry{Name: name, Command: cmd})
	r.byName[name] = idx
	for _, alias := range cmd.Aliases {
		r.byAlias[alias] = idx
	}
	return nil
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []commands.Entry {
	return r.entries
}

// ListCommands returns the Telegram menu entries, names without the slash.
// Hidden commands are skipped when visibleOnly is set.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	list := make([]tele.Command, 0, len(r.entries))
	for _, e := range r.entries {
		if visibleOnly && e.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(e.Name, "/"), Description: e.Description})
	}
	return list
}

// LookupCommand resolves text to a command. An exact alias wins; otherwise
// text is read as a command name with or without the slash.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", commands.Command{}, false
	}
	idx, ok := r.byAlias[text]
	if !ok {
		idx, ok = r.byName["/"+strings.TrimPrefix(text, "/")]
	}
	if !ok {
		return "", commands.Command{}, false
	}
	e := r.entries[idx]
	return e.Name, e.Command, true
}

// SetTextFallback sets the handler for text that matches no command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// SetupCommands publishes the visible commands in the Telegram command menu.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	if bot == nil || reg == nil {
		return
	}
	list := reg.ListCommands(true)
	if len(list) == 0 {
		return
	}
	ctx := context.Background()
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(ctx, slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(ctx, slog.LevelInfo, "register.commands.set",
		slog.Int("count", len(list)),
	)
}
