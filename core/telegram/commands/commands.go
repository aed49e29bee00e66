// Package commands describes slash commands for the registry.
package commands

import tele "gopkg.in/telebot.v4"

// Command is a slash command. Aliases are exact texts, typically reply
// keyboard labels, that reach the same handler without a slash.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
	Aliases     []string
}

// Entry is a registered command together with its "/name".
type Entry struct {
	Name string
	Command
}
