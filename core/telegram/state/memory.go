package state

import (
	"sync"
	"time"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	now      func() time.Time
}

// Option customises the in-memory manager.
type Option func(*memoryManager)

// WithClock overrides the time source used for LastSeen bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(m *memoryManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryManager constructs an in-memory Manager. Sessions live until Clear,
// Expire or process exit.
func NewMemoryManager(opts ...Option) Manager {
	m := &memoryManager{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// session returns the session for id, creating it on first contact.
func (m *memoryManager) session(id int64) *Session {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return sess
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok = m.sessions[id]; ok {
		return sess
	}
	sess = &Session{State: StateIdle, LastSeen: m.now()}
	m.sessions[id] = sess
	return sess
}

// lock returns the live session for id with its mutex held.
func (m *memoryManager) lock(id int64) *Session {
	for {
		sess := m.session(id)
		sess.mu.Lock()
		m.mu.RLock()
		current := m.sessions[id]
		m.mu.RUnlock()
		if current == sess {
			return sess
		}
		// Removed between lookup and lock; start over with a fresh session.
		sess.mu.Unlock()
	}
}

// Transition runs fn with the current state and stores the returned state.
func (m *memoryManager) Transition(id int64, fn func(current State) State) State {
	sess := m.lock(id)
	defer sess.mu.Unlock()

	next := sess.State
	if fn != nil {
		next = fn(sess.State)
	}
	if next == "" {
		next = StateIdle
	}
	sess.State = next
	sess.LastSeen = m.now()
	return next
}

// SetState sets the FSM state for the given conversation.
func (m *memoryManager) SetState(id int64, st State) {
	m.Transition(id, func(State) State { return st })
}

// GetState returns the current FSM state, or StateIdle if none exists.
func (m *memoryManager) GetState(id int64) State {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return StateIdle
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.State
}

// ClearState resets the FSM state to idle without removing the session.
func (m *memoryManager) ClearState(id int64) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return
	}
	sess.mu.Lock()
	sess.State = StateIdle
	sess.mu.Unlock()
}

// HasState checks if a conversation has an active state other than idle.
func (m *memoryManager) HasState(id int64) bool {
	return m.GetState(id) != StateIdle
}

// InProgress reports whether the conversation currently has an active FSM state.
func (m *memoryManager) InProgress(id int64) bool {
	return m.HasState(id)
}

// Clear removes the entire session.
func (m *memoryManager) Clear(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of tracked sessions.
func (m *memoryManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Expire drops sessions not seen for longer than ttl and returns how many were
// removed. Sessions busy in a transition are left alone.
func (m *memoryManager) Expire(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, sess := range m.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.LastSeen.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
		sess.mu.Unlock()
	}
	return removed
}
