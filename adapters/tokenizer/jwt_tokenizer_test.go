package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/clockguard/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func clearanceAt(issued time.Time, ttl time.Duration) *core.Clearance {
	return &core.Clearance{
		ID:         "jti-1",
		SessionID:  "0123456789abcdef0123456789abcdef",
		Difficulty: core.DifficultyHard,
		IssuedAt:   issued,
		ExpiresAt:  issued.Add(ttl),
	}
}

func TestClearanceTokenVerifies(t *testing.T) {
	tk := NewJWTTokenizer(newKey(t))
	now := time.Now().Truncate(time.Second)

	token, err := tk.ClearanceToToken(clearanceAt(now, 10*time.Minute))
	require.NoError(t, err)

	got, err := tk.TokenToClearance(token)
	require.NoError(t, err)
	assert.Equal(t, "jti-1", got.ID)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", got.SessionID)
	assert.Equal(t, core.DifficultyHard, got.Difficulty)
	assert.True(t, got.ExpiresAt.Equal(now.Add(10*time.Minute)))
}

func TestExpiredClearanceIsRejected(t *testing.T) {
	tk := NewJWTTokenizer(newKey(t))

	token, err := tk.ClearanceToToken(clearanceAt(time.Now().Add(-time.Hour), time.Minute))
	require.NoError(t, err)

	_, err = tk.TokenToClearance(token)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestForeignKeyIsRejected(t *testing.T) {
	token, err := NewJWTTokenizer(newKey(t)).ClearanceToToken(clearanceAt(time.Now(), time.Minute))
	require.NoError(t, err)

	_, err = NewJWTTokenizer(newKey(t)).TokenToClearance(token)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestTamperedTokenIsRejected(t *testing.T) {
	tk := NewJWTTokenizer(newKey(t))
	token, err := tk.ClearanceToToken(clearanceAt(time.Now(), time.Minute))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, ClearanceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{AudienceClearance},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Difficulty: "easy",
	})
	forgedStr, err := forged.SignedString([]byte("guess"))
	require.NoError(t, err)

	_, err = tk.TokenToClearance(forgedStr)
	assert.ErrorIs(t, err, core.ErrInvalidToken)

	_, err = tk.TokenToClearance(parts[0] + "." + parts[1] + ".AAAA")
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
