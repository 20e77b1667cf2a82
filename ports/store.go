package ports

import (
	"context"
	"time"

	"github.com/layer-3/clockguard/core"
)

// SweepStats summarises one sweep pass
type SweepStats struct {
	Scanned int
	Expired int
	Evicted int
}

// SessionStore owns every session and serializes access per id
type SessionStore interface {
	// Create assigns a fresh id to session, stores it and returns the id
	Create(ctx context.Context, session core.Session) (string, error)

	// WithSession applies fn atomically with respect to other calls on the same id.
	// It returns core.ErrSessionNotFound when the id is unknown or evicted.
	// Sessions that fn leaves Consumed are removed.
	WithSession(ctx context.Context, id string, fn func(*core.Session) error) error

	// Sweep expires overdue sessions and evicts stale terminal ones
	Sweep(ctx context.Context, now time.Time) (SweepStats, error)
}
