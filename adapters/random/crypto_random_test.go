package random

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) { return 0, errors.New("entropy pool drained") }

func TestIntnStaysInRange(t *testing.T) {
	r := New()
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		v, err := r.Intn(12)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 12)
		seen[v] = true
	}
	assert.Len(t, seen, 12, "every hour should be drawn at least once")
}

func TestIntnRejectsBadBound(t *testing.T) {
	_, err := New().Intn(0)
	assert.Error(t, err)
}

func TestSessionIDIsUniqueHex(t *testing.T) {
	ids := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id, err := SessionID()
		require.NoError(t, err)
		require.Len(t, id, SessionIDBytes*2)
		_, dup := ids[id]
		require.False(t, dup)
		ids[id] = struct{}{}
	}
}

func TestFailingReader(t *testing.T) {
	r := NewFromReader(failingReader{})

	_, err := r.Intn(60)
	assert.Error(t, err)

	_, err = r.SessionID()
	assert.Error(t, err)
}
