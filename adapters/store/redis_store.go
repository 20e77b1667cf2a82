package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/ports"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces session keys
	DefaultKeyPrefix = "clockguard:session:"

	maxTxRetries = 16
	scanCount    = 256
)

// sessionRecord is the CBOR layout of a session value
type sessionRecord struct {
	TargetHour        int       `cbor:"1,keyasint"`
	TargetMinute      int       `cbor:"2,keyasint"`
	Difficulty        int       `cbor:"3,keyasint"`
	ToleranceMinutes  int       `cbor:"4,keyasint"`
	CreatedAt         time.Time `cbor:"5,keyasint"`
	ExpiresAt         time.Time `cbor:"6,keyasint"`
	AttemptsRemaining int       `cbor:"7,keyasint"`
	State             int       `cbor:"8,keyasint"`
	FinalizedAt       time.Time `cbor:"9,keyasint,omitempty"`
	Reported          bool      `cbor:"10,keyasint,omitempty"`
}

// RedisStore is a Redis implementation of ports.SessionStore. Every session is
// one key; per-key atomicity comes from WATCH/MULTI transactions.
type RedisStore struct {
	client *redis.Client
	prefix string
	enc    cbor.EncMode
	opts   options
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client, prefix string, opts ...Option) (*RedisStore, error) {
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to build cbor encoder: %w", err)
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		enc:    enc,
		opts:   buildOptions(opts),
	}, nil
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) encode(sess *core.Session) ([]byte, error) {
	rec := sessionRecord{
		TargetHour:        sess.Challenge.Target.Hour,
		TargetMinute:      sess.Challenge.Target.Minute,
		Difficulty:        int(sess.Challenge.Difficulty),
		ToleranceMinutes:  sess.Challenge.ToleranceMinutes,
		CreatedAt:         sess.CreatedAt,
		ExpiresAt:         sess.ExpiresAt,
		AttemptsRemaining: sess.AttemptsRemaining,
		State:             int(sess.State),
		FinalizedAt:       sess.FinalizedAt,
		Reported:          sess.Reported,
	}
	return s.enc.Marshal(rec)
}

func decode(id string, data []byte) (*core.Session, error) {
	var rec sessionRecord
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &core.Session{
		ID: id,
		Challenge: core.Challenge{
			Target:           core.ClockTime{Hour: rec.TargetHour, Minute: rec.TargetMinute},
			Difficulty:       core.Difficulty(rec.Difficulty),
			ToleranceMinutes: rec.ToleranceMinutes,
		},
		CreatedAt:         rec.CreatedAt,
		ExpiresAt:         rec.ExpiresAt,
		AttemptsRemaining: rec.AttemptsRemaining,
		State:             core.State(rec.State),
		FinalizedAt:       rec.FinalizedAt,
		Reported:          rec.Reported,
	}, nil
}

// Create stores session with SETNX so an existing key is never overwritten
func (s *RedisStore) Create(ctx context.Context, session core.Session) (string, error) {
	data, err := s.encode(&session)
	if err != nil {
		return "", err
	}
	ttl := session.ExpiresAt.Sub(session.CreatedAt) + s.opts.retention

	for i := 0; i < maxIDAttempts; i++ {
		id, err := s.opts.ids()
		if err != nil {
			return "", fmt.Errorf("%w: %w", core.ErrGeneration, err)
		}

		ok, err := s.client.SetNX(ctx, s.key(id), data, ttl).Result()
		if err != nil {
			return "", fmt.Errorf("failed to create session: %w", err)
		}
		if !ok {
			s.opts.log.WithField("attempt", i+1).Error("session id collision, regenerating")
			continue
		}
		return id, nil
	}
	return "", fmt.Errorf("%w: %w", core.ErrGeneration, core.ErrDuplicateSession)
}

// WithSession applies fn inside an optimistic transaction on the session key
func (s *RedisStore) WithSession(ctx context.Context, id string, fn func(*core.Session) error) error {
	return s.update(ctx, id, func(sess *core.Session) (writeAction, error) {
		if err := fn(sess); err != nil {
			return writeSkip, err
		}
		if sess.State == core.StateConsumed {
			return writeEvict, nil
		}
		return writeBack, nil
	})
}

type writeAction int

const (
	writeBack writeAction = iota
	writeEvict
	writeSkip
)

// update reads, mutates and writes back one session, retrying when another
// client touched the key in between. fn may run more than once.
func (s *RedisStore) update(ctx context.Context, id string, fn func(*core.Session) (writeAction, error)) error {
	key := s.key(id)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return core.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}

		sess, err := decode(id, raw)
		if err != nil {
			return err
		}
		before := sess.State

		action, err := fn(sess)
		if err != nil || action == writeSkip {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if action == writeEvict {
				pipe.Del(ctx, key)
				return nil
			}
			data, err := s.encode(sess)
			if err != nil {
				return err
			}
			var ttl time.Duration = redis.KeepTTL
			if sess.State.Terminal() && !before.Terminal() {
				// terminal sessions only live for the retention window
				ttl = s.opts.retention + time.Second
			}
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("session %s: too much contention", id)
}

// Sweep scans every session key and applies the sweep rules to each
func (s *RedisStore) Sweep(ctx context.Context, now time.Time) (ports.SweepStats, error) {
	var stats ports.SweepStats

	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(s.prefix):]

		var result core.SweepResult
		err := s.update(ctx, id, func(sess *core.Session) (writeAction, error) {
			result = sess.Sweep(now, s.opts.retention)
			switch result {
			case core.SweepEvict:
				return writeEvict, nil
			case core.SweepExpired:
				return writeBack, nil
			}
			return writeSkip, nil
		})
		if errors.Is(err, core.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return stats, err
		}

		stats.Scanned++
		switch result {
		case core.SweepExpired:
			stats.Expired++
		case core.SweepEvict:
			stats.Evicted++
		}
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return stats, nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
