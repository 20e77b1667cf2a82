// Package clockguard issues analog-clock CAPTCHA challenges and verifies the
// times users read off them.
package clockguard

import (
	"context"

	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/ports"
	"github.com/layer-3/clockguard/service"
)

// Engine represents the public interface for embedding the captcha in another server
type Engine interface {
	// Issue creates a challenge; a zero difficulty selects the default
	Issue(ctx context.Context, d core.Difficulty) (*service.IssuedChallenge, error)

	// Verify runs one attempt against a session
	Verify(ctx context.Context, sessionID string, hour, minute int) (service.VerifyResult, error)

	// Image re-renders the challenge of a live session
	Image(ctx context.Context, sessionID string) (ports.Image, error)

	// ValidateClearance checks a token minted by a successful Verify
	ValidateClearance(ctx context.Context, token string) (*core.Clearance, error)
}

var _ Engine = (*service.CaptchaService)(nil)
