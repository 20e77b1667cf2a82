package core

import "errors"

var (
	ErrGeneration        = errors.New("challenge generation failed")
	ErrSessionNotFound   = errors.New("session not found")
	ErrDuplicateSession  = errors.New("duplicate session id")
	ErrInvalidTime       = errors.New("invalid clock time")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrInvalidPolicy     = errors.New("invalid difficulty policy")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token has expired")
)
