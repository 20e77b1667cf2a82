package store

import (
	"context"
	"fmt"
	"hash/maphash"
	"sync"
	"time"

	"github.com/layer-3/clockguard/adapters/random"
	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/internal/logger"
	"github.com/layer-3/clockguard/ports"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultShards is the number of lock stripes of a MemoryStore
	DefaultShards = 64

	// DefaultRetention keeps terminal sessions around for a final status read
	DefaultRetention = 30 * time.Second

	maxIDAttempts = 8
)

// IDSource mints session identifiers
type IDSource func() (string, error)

// Option configures a store
type Option func(*options)

type options struct {
	shards    int
	retention time.Duration
	ids       IDSource
	log       logrus.FieldLogger
}

// WithShards sets the number of lock stripes (memory store only)
func WithShards(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shards = n
		}
	}
}

// WithRetention sets how long terminal sessions outlive their final transition
func WithRetention(d time.Duration) Option {
	return func(o *options) { o.retention = d }
}

// WithIDSource replaces the crypto/rand id generator
func WithIDSource(ids IDSource) Option {
	return func(o *options) { o.ids = ids }
}

// WithLogger sets the logger used for invariant violations
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{
		shards:    DefaultShards,
		retention: DefaultRetention,
		ids:       random.SessionID,
		log:       logger.Logger,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// entry guards a single session. removed is set once the entry has left its
// shard, so late lockers never act on a dead session.
type entry struct {
	mu      sync.Mutex
	session core.Session
	removed bool
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// MemoryStore is an in-memory implementation of ports.SessionStore.
// Lookups take a shard read lock; mutations lock only the session's own entry.
type MemoryStore struct {
	shards []*shard
	seed   maphash.Seed
	opts   options
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	s := &MemoryStore{
		shards: make([]*shard, o.shards),
		seed:   maphash.MakeSeed(),
		opts:   o,
	}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	return s.shards[maphash.String(s.seed, id)%uint64(len(s.shards))]
}

// Create stores session under a freshly minted id
func (s *MemoryStore) Create(ctx context.Context, session core.Session) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := s.opts.ids()
		if err != nil {
			return "", fmt.Errorf("%w: %w", core.ErrGeneration, err)
		}

		session.ID = id
		sh := s.shardFor(id)

		sh.mu.Lock()
		if _, exists := sh.entries[id]; exists {
			sh.mu.Unlock()
			s.opts.log.WithField("attempt", i+1).Error("session id collision, regenerating")
			continue
		}
		sh.entries[id] = &entry{session: session}
		sh.mu.Unlock()

		return id, nil
	}
	return "", fmt.Errorf("%w: %w", core.ErrGeneration, core.ErrDuplicateSession)
}

// WithSession applies fn to the session while holding its entry lock
func (s *MemoryStore) WithSession(ctx context.Context, id string, fn func(*core.Session) error) error {
	sh := s.shardFor(id)

	sh.mu.RLock()
	e, ok := sh.entries[id]
	sh.mu.RUnlock()
	if !ok {
		return core.ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return core.ErrSessionNotFound
	}

	// fn works on a copy so a failed mutation leaves no trace
	sess := e.session
	if err := fn(&sess); err != nil {
		return err
	}
	e.session = sess

	if sess.State == core.StateConsumed {
		s.remove(sh, id, e)
	}
	return nil
}

// remove unlinks e from its shard; the caller holds e.mu
func (s *MemoryStore) remove(sh *shard, id string, e *entry) {
	e.removed = true
	sh.mu.Lock()
	if cur, ok := sh.entries[id]; ok && cur == e {
		delete(sh.entries, id)
	}
	sh.mu.Unlock()
}

// Sweep walks one shard at a time; each session is handled under its own lock
func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) (ports.SweepStats, error) {
	var stats ports.SweepStats

	for _, sh := range s.shards {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		sh.mu.RLock()
		ids := make([]string, 0, len(sh.entries))
		entries := make([]*entry, 0, len(sh.entries))
		for id, e := range sh.entries {
			ids = append(ids, id)
			entries = append(entries, e)
		}
		sh.mu.RUnlock()

		for i, e := range entries {
			e.mu.Lock()
			if !e.removed {
				stats.Scanned++
				switch e.session.Sweep(now, s.opts.retention) {
				case core.SweepExpired:
					stats.Expired++
				case core.SweepEvict:
					s.remove(sh, ids[i], e)
					stats.Evicted++
				}
			}
			e.mu.Unlock()
		}
	}
	return stats, nil
}

// Len returns the number of stored sessions
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}
