package core

// store.go keeps the edit sessions of the web front end in memory.
//
// Each browser tab gets its own session ID. Sessions are never persisted:
// idle entries are swept after the configured timeout and everything is lost
// on restart.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// DefaultSessionIdleTimeout is used when NewSessionStore gets a non-positive timeout.
const DefaultSessionIdleTimeout = 30 * time.Minute

type storeEntry struct {
	mu       sync.Mutex
	session  *Session
	lastUsed time.Time
}

// SessionStore maps session IDs to sessions.
type SessionStore struct {
	mu          sync.Mutex
	entries     map[string]*storeEntry
	idleTimeout time.Duration
	now         func() time.Time
}

// NewSessionStore creates a store that forgets sessions unused for idleTimeout.
func NewSessionStore(idleTimeout time.Duration) *SessionStore {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	return &SessionStore{
		entries:     make(map[string]*storeEntry),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Create registers a new empty session and returns its ID.
func (st *SessionStore) Create() string {
	id := uuid.NewString()

	st.mu.Lock()
	st.entries[id] = &storeEntry{
		session:  NewSession(nil),
		lastUsed: st.now(),
	}
	st.mu.Unlock()

	return id
}

// With runs fn with exclusive access to the session. Operations on one
// session never interleave; separate sessions proceed in parallel.
func (st *SessionStore) With(id string, fn func(*Session) error) error {
	st.mu.Lock()
	e, ok := st.entries[id]
	if ok {
		e.lastUsed = st.now()
	}
	st.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Delete discards a session. Deleting an unknown ID is not an error.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.entries, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// Sweep removes sessions idle longer than the store's timeout and returns
// how many were removed.
func (st *SessionStore) Sweep() int {
	cutoff := st.now().Add(-st.idleTimeout)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, e := range st.entries {
		if e.lastUsed.Before(cutoff) {
			delete(st.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (st *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				slog.Debug("expired editor sessions", "removed", n, "remaining", st.Len())
			}
		}
	}
}
