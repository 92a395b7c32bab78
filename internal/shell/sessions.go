package shell

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Resetter is session state that can be cleared when a session ends.
type Resetter interface {
	Reset()
}

// Sessions keeps one state value per browser session, in memory only.
type Sessions[S Resetter] struct {
	newSession func() S
	idleTTL    time.Duration
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry[S]
}

type sessionEntry[S Resetter] struct {
	state    S
	lastSeen time.Time
}

// NewSessions creates a store whose sessions are built by newSession and expire after idleTTL without use.
// A zero idleTTL keeps sessions until they are deleted.
func NewSessions[S Resetter](newSession func() S, idleTTL time.Duration) *Sessions[S] {
	return &Sessions[S]{
		newSession: newSession,
		idleTTL:    idleTTL,
		now:        time.Now,
		entries:    make(map[string]*sessionEntry[S]),
	}
}

// NewID returns a fresh random session ID.
func NewID() string {
	return uuid.NewString()
}

// Get returns the state for id, creating it when missing or expired.
func (s *Sessions[S]) Get(id string) S {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictLocked(now)

	entry, ok := s.entries[id]
	if !ok {
		entry = &sessionEntry[S]{state: s.newSession()}
		s.entries[id] = entry
	}
	entry.lastSeen = now
	return entry.state
}

// Delete discards the session.
func (s *Sessions[S]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[id]; ok {
		entry.state.Reset()
		delete(s.entries, id)
	}
}

// Len returns the number of live sessions.
func (s *Sessions[S]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evict drops sessions idle for longer than the TTL.
func (s *Sessions[S]) Evict() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(s.now())
}

func (s *Sessions[S]) evictLocked(now time.Time) {
	if s.idleTTL <= 0 {
		return
	}
	for id, entry := range s.entries {
		if now.Sub(entry.lastSeen) > s.idleTTL {
			entry.state.Reset()
			delete(s.entries, id)
		}
	}
}
