package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/popdash/internal/core"
	"github.com/google/uuid"
)

// Session is one visitor's selection. Its mutex is held for an update and
// the render that follows, so a visitor never sees interleaved renders.
type Session struct {
	ID string

	mu  sync.Mutex
	sel core.Selection
}

// Selection returns a copy of the current selection.
func (s *Session) Selection() core.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Do runs fn with exclusive access to the selection. Changes fn makes to
// sel are kept only when fn returns nil.
func (s *Session) Do(fn func(sel *core.Selection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.sel
	if err := fn(&next); err != nil {
		return err
	}
	s.sel = next
	return nil
}

type sessionEntry struct {
	session  *Session
	lastSeen time.Time
}

// SessionStore maps session IDs to sessions and expires idle ones.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates an empty store whose sessions expire after ttl
// without a request.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns a live session and refreshes its idle timer.
func (st *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(e.lastSeen) > st.ttl {
		delete(st.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

// Create starts a session holding sel under a new random ID.
func (st *SessionStore) Create(sel core.Selection) *Session {
	sess := &Session{ID: uuid.NewString(), sel: sel}

	st.mu.Lock()
	st.sessions[sess.ID] = &sessionEntry{session: sess, lastSeen: st.now()}
	st.mu.Unlock()

	return sess
}

// Len returns the number of stored sessions, expired or not.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Cleanup removes expired sessions and returns how many were removed.
func (st *SessionStore) Cleanup() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, e := range st.sessions {
		if now.Sub(e.lastSeen) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is cancelled.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Cleanup(); n > 0 {
				slog.Debug("expired sessions removed", "count", n, "remaining", st.Len())
			}
		}
	}
}
