package tokenizer

import "github.com/golang-jwt/jwt/v5"

// ClearanceClaims combines standard claims with the solved difficulty
type ClearanceClaims struct {
	jwt.RegisteredClaims
	Difficulty string `json:"dif"`
}
