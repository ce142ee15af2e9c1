// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/npetros/argosales/internal/domain"
)

// Archive persists completed conversation turns off the hot path. The live
// conversation state stays in memory; the archive exists for audit and for
// reviewing sessions after they have been evicted.
type Archive interface {
	// AppendTurn records one transcript turn for a session.
	AppendTurn(ctx context.Context, sessionID string, turn domain.Turn) error

	// ListTurns returns all recorded turns for a session in append order.
	ListTurns(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// Ping verifies the archive is reachable.
	Ping(ctx context.Context) error

	// Close closes the underlying storage.
	Close() error
}

// NopArchive discards everything. Used when archiving is disabled.
type NopArchive struct{}

func (NopArchive) AppendTurn(context.Context, string, domain.Turn) error { return nil }
func (NopArchive) ListTurns(context.Context, string) ([]domain.Turn, error) {
	return nil, nil
}
func (NopArchive) Ping(context.Context) error { return nil }
func (NopArchive) Close() error               { return nil }
