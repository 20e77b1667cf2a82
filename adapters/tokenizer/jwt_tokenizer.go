package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/ports"
)

const (
	AudienceClearance = "captcha:clearance"
	Issuer            = "clockguard"
)

// JWTTokenizer implements the Tokenizer interface using ES256 JWTs
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(signKey *ecdsa.PrivateKey) ports.Tokenizer {
	return &JWTTokenizer{signKey: signKey}
}

// ClearanceToToken converts a Clearance to a signed JWT
func (j *JWTTokenizer) ClearanceToToken(clearance *core.Clearance) (string, error) {
	claims := ClearanceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   clearance.SessionID,
			ID:        clearance.ID,
			ExpiresAt: jwt.NewNumericDate(clearance.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(clearance.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceClearance},
		},
		Difficulty: clearance.Difficulty.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// TokenToClearance verifies a JWT and converts it back to a Clearance
func (j *JWTTokenizer) TokenToClearance(tokenStr string) (*core.Clearance, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ClearanceClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceClearance), jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidToken, err)
	}

	// Validate token
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	// Extract claims
	claims, ok := token.Claims.(*ClearanceClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid claims type", core.ErrInvalidToken)
	}

	difficulty, err := core.ParseDifficulty(claims.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidToken, err)
	}

	clearance := &core.Clearance{
		ID:         claims.ID,
		SessionID:  claims.Subject,
		Difficulty: difficulty,
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		clearance.IssuedAt = claims.IssuedAt.Time
	}

	return clearance, nil
}
