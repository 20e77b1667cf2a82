package service

import (
	"context"
	"testing"
	"time"

	"github.com/layer-3/clockguard/adapters/store"
	"github.com/layer-3/clockguard/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperRunOnce(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC))
	s := store.NewMemoryStore(store.WithRetention(30 * time.Second))
	level := core.DefaultPolicy()[core.DifficultyHard]
	_, err := s.Create(context.Background(), core.NewSession(core.Challenge{Difficulty: core.DifficultyHard}, level, clock.Now()))
	require.NoError(t, err)

	sw := NewSweeper(s, time.Minute, time.Second).WithClock(clock)

	stats, err := sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scanned)
	assert.Zero(t, stats.Expired)

	clock.Advance(3 * time.Minute)
	stats, err = sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Expired)

	clock.Advance(time.Minute)
	stats, err = sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Evicted)
	assert.Zero(t, s.Len())
}

func TestSweeperRunsOnSchedule(t *testing.T) {
	s := store.NewMemoryStore(store.WithRetention(0))
	level := core.Level{TTL: time.Millisecond, Attempts: 1}
	_, err := s.Create(context.Background(), core.NewSession(core.Challenge{}, level, time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	sw := NewSweeper(s, time.Second, time.Second)
	require.NoError(t, sw.Start())
	defer sw.Stop()

	// expire on the first tick, evict on the next
	assert.Eventually(t, func() bool { return s.Len() == 0 }, 5*time.Second, 50*time.Millisecond)
}

func TestSweeperRejectsBadInterval(t *testing.T) {
	sw := NewSweeper(store.NewMemoryStore(), -time.Second, time.Second)
	assert.Error(t, sw.Start())
}
