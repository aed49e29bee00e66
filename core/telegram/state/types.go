// Package state keeps per-conversation dialog state in memory. Callers define
// their own State values and change them through Manager.Transition; idle
// sessions are dropped by the reaper.
package state

import (
	"sync"
	"time"
)

// State names the step a conversation is in.
type State string

// StateIdle is the state of a conversation with nothing pending.
const StateIdle State = "idle"

// Session is one conversation's entry in the memory manager.
type Session struct {
	mu       sync.Mutex
	State    State
	LastSeen time.Time
}

// Manager stores the state of each conversation, keyed by chat id.
type Manager interface {
	SetState(id int64, st State)
	GetState(id int64) State
	HasState(id int64) bool
	ClearState(id int64)
	Clear(id int64)

	// Transition runs fn under the conversation lock and stores its result.
	// Calls for the same id never overlap.
	Transition(id int64, fn func(current State) State) State

	InProgress(id int64) bool
	Len() int

	// Expire drops sessions idle for longer than ttl; ttl <= 0 is a no-op.
	Expire(ttl time.Duration) int
}
