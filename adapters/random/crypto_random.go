package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/layer-3/clockguard/ports"
)

// SessionIDBytes is the number of random bytes in a session id (128 bits)
const SessionIDBytes = 16

// CryptoRandom implements ports.Random on top of a cryptographic reader
type CryptoRandom struct {
	reader io.Reader
}

// New returns a source backed by crypto/rand
func New() ports.Random {
	return &CryptoRandom{reader: rand.Reader}
}

// NewFromReader returns a source backed by r
func NewFromReader(r io.Reader) *CryptoRandom {
	return &CryptoRandom{reader: r}
}

// Intn returns a uniform value in [0, n)
func (c *CryptoRandom) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid bound %d", n)
	}
	v, err := rand.Int(c.reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("failed to read randomness: %w", err)
	}
	return int(v.Int64()), nil
}

// SessionID returns a hex-encoded 128-bit random identifier
func (c *CryptoRandom) SessionID() (string, error) {
	b := make([]byte, SessionIDBytes)
	if _, err := io.ReadFull(c.reader, b); err != nil {
		return "", fmt.Errorf("failed to read randomness: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SessionID draws an id from crypto/rand
func SessionID() (string, error) {
	return NewFromReader(rand.Reader).SessionID()
}
