package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for unknown session IDs. Chat handling
// never sees it — an unknown ID always creates a session — but inspection
// endpoints do.
var ErrNotFound = errors.New("session: not found")

// Store is an in-memory session map. The map itself is guarded by mu;
// individual sessions carry their own lock (see Session).
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Get returns the session for id, or ErrNotFound.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// GetOrCreate returns the session for id, creating it with cfg on first
// sight. Session IDs are opaque client-supplied strings.
func (s *Store) GetOrCreate(id string, cfg Config) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.lastActive = s.now()
		return sess
	}
	sess := NewSession(id, cfg, s.now())
	sess.lastActive = sess.CreatedAt
	s.sessions[id] = sess
	return sess
}

// Touch refreshes the idle-eviction clock for id.
func (s *Store) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.lastActive = s.now()
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle removes sessions idle longer than ttl and returns how many were
// dropped. Sessions currently processing a turn are skipped and picked up on
// the next sweep.
func (s *Store) EvictIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.lastActive.After(cutoff) {
			continue
		}
		if !sess.TryLock() {
			continue
		}
		sess.Unlock()
		delete(s.sessions, id)
		evicted++
	}
	return evicted
}

// StartJanitor sweeps idle sessions every interval until ctx is cancelled.
// A ttl of zero disables eviction entirely.
func (s *Store) StartJanitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 {
		slog.Info("Session eviction disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.EvictIdle(ttl); n > 0 {
					slog.Info("Evicted idle sessions", "count", n, "ttl", ttl)
				}
			}
		}
	}()
}
