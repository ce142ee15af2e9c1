// Package session keeps per-conversation state in memory and serializes
// access per session. Sessions live for the life of the process unless the
// idle-eviction janitor removes them.
package session

import (
	"sync"
	"time"

	"github.com/npetros/argosales/internal/domain"
	"github.com/npetros/argosales/internal/stage"
)

// Config carries the per-session flags fixed at creation time.
type Config struct {
	UseTools bool
}

// Session is the unit of conversation continuity: an opaque client-supplied
// identifier, the transcript, and the currently believed stage.
//
// The embedded mutex serializes turns: callers must hold the lock for the
// whole duration of a turn (transcript append, stage update, reply append).
// Two simultaneous requests for the same session ID queue on it.
type Session struct {
	sync.Mutex

	ID         string
	Transcript domain.Transcript
	Stage      string
	UseTools   bool
	CreatedAt  time.Time

	// lastActive is maintained by the store for idle eviction; guarded by
	// the store's own mutex, not the session lock.
	lastActive time.Time
}

// NewSession creates a fresh session in the Introduction stage.
func NewSession(id string, cfg Config, now time.Time) *Session {
	return &Session{
		ID:        id,
		Stage:     stage.Default(),
		UseTools:  cfg.UseTools,
		CreatedAt: now,
	}
}
