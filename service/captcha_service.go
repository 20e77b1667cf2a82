package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/internal/logger"
	"github.com/layer-3/clockguard/ports"
	"github.com/sirupsen/logrus"
)

// DefaultClearanceTTL is how long a clearance token stays valid
const DefaultClearanceTTL = 10 * time.Minute

// IssuedChallenge is what a client receives for a new challenge
type IssuedChallenge struct {
	SessionID  string
	Difficulty core.Difficulty
	Image      ports.Image
	ExpiresIn  time.Duration
}

// VerifyResult is a verdict plus the clearance token minted on success
type VerifyResult struct {
	core.Verdict
	ClearanceToken string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a CaptchaService
type Option func(*CaptchaService)

// WithClock replaces the wall clock
func WithClock(c ports.Clock) Option {
	return func(s *CaptchaService) { s.clock = c }
}

// WithTokenizer enables clearance tokens for verified sessions
func WithTokenizer(t ports.Tokenizer, ttl time.Duration) Option {
	return func(s *CaptchaService) {
		s.tokenizer = t
		if ttl > 0 {
			s.clearanceTTL = ttl
		}
	}
}

// WithEventPublisher publishes every verdict
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *CaptchaService) { s.eventPub = p }
}

// WithDefaultDifficulty sets the level used when a caller does not pick one
func WithDefaultDifficulty(d core.Difficulty) Option {
	return func(s *CaptchaService) { s.defaultDifficulty = d }
}

// WithLogger sets the service logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *CaptchaService) { s.log = l }
}

// CaptchaService issues clock challenges and verifies answers
type CaptchaService struct {
	generator *Generator
	renderer  ports.Renderer
	store     ports.SessionStore
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	clock     ports.Clock
	log       logrus.FieldLogger

	policy            core.Policy
	defaultDifficulty core.Difficulty
	clearanceTTL      time.Duration
}

// NewCaptchaService creates a new challenge service
func NewCaptchaService(
	random ports.Random,
	renderer ports.Renderer,
	store ports.SessionStore,
	policy core.Policy,
	opts ...Option,
) *CaptchaService {
	s := &CaptchaService{
		generator:         NewGenerator(random, policy),
		renderer:          renderer,
		store:             store,
		clock:             systemClock{},
		log:               logger.Logger,
		policy:            policy,
		defaultDifficulty: core.DefaultDifficulty,
		clearanceTTL:      DefaultClearanceTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultDifficulty returns the level used for requests without one
func (s *CaptchaService) DefaultDifficulty() core.Difficulty {
	return s.defaultDifficulty
}

// ClearanceTTL returns how long minted clearance tokens stay valid
func (s *CaptchaService) ClearanceTTL() time.Duration {
	return s.clearanceTTL
}

// Issue generates, renders and stores a new challenge. A zero difficulty
// selects the default level.
func (s *CaptchaService) Issue(ctx context.Context, d core.Difficulty) (*IssuedChallenge, error) {
	if d == 0 {
		d = s.defaultDifficulty
	}

	challenge, level, err := s.generator.Generate(d)
	if err != nil {
		return nil, err
	}

	img, err := s.renderer.Render(challenge.Target, level.RenderParams())
	if err != nil {
		return nil, fmt.Errorf("failed to render challenge: %w", err)
	}

	id, err := s.store.Create(ctx, core.NewSession(challenge, level, s.clock.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"session":    id,
		"difficulty": d.String(),
	}).Debug("challenge issued")

	return &IssuedChallenge{
		SessionID:  id,
		Difficulty: d,
		Image:      img,
		ExpiresIn:  level.TTL,
	}, nil
}

// Verify runs one attempt against the session. Unknown sessions report
// Expired so callers cannot probe which ids exist.
func (s *CaptchaService) Verify(ctx context.Context, sessionID string, hour, minute int) (VerifyResult, error) {
	answer, err := core.NewClockTime(hour, minute)
	if err != nil {
		return VerifyResult{}, err
	}

	now := s.clock.Now()
	var verdict core.Verdict
	var difficulty core.Difficulty

	err = s.store.WithSession(ctx, sessionID, func(sess *core.Session) error {
		verdict = sess.Attempt(answer, now)
		difficulty = sess.Challenge.Difficulty
		return nil
	})
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		verdict = core.Verdict{Outcome: core.OutcomeExpired}
	case err != nil:
		return VerifyResult{}, fmt.Errorf("failed to verify session: %w", err)
	}

	result := VerifyResult{Verdict: verdict}
	s.publish(ctx, sessionID, difficulty, verdict)

	if verdict.Outcome == core.OutcomeVerified && s.tokenizer != nil {
		token, err := s.tokenizer.ClearanceToToken(&core.Clearance{
			ID:         uuid.New().String(),
			SessionID:  sessionID,
			Difficulty: difficulty,
			IssuedAt:   now,
			ExpiresAt:  now.Add(s.clearanceTTL),
		})
		if err != nil {
			// The verdict is already final; report it without a token
			s.log.WithError(err).WithField("session", sessionID).Error("failed to issue clearance")
		} else {
			result.ClearanceToken = token
		}
	}

	return result, nil
}

// Image re-renders the challenge of a live session
func (s *CaptchaService) Image(ctx context.Context, sessionID string) (ports.Image, error) {
	now := s.clock.Now()
	var challenge core.Challenge

	err := s.store.WithSession(ctx, sessionID, func(sess *core.Session) error {
		if !sess.Live(now) {
			return core.ErrSessionNotFound
		}
		challenge = sess.Challenge
		return nil
	})
	if err != nil {
		return ports.Image{}, err
	}

	level, err := s.policy.Level(challenge.Difficulty)
	if err != nil {
		return ports.Image{}, err
	}
	return s.renderer.Render(challenge.Target, level.RenderParams())
}

// ValidateClearance checks a clearance token minted by Verify
func (s *CaptchaService) ValidateClearance(ctx context.Context, token string) (*core.Clearance, error) {
	if s.tokenizer == nil {
		return nil, core.ErrInvalidToken
	}
	clearance, err := s.tokenizer.TokenToClearance(token)
	if err != nil {
		return nil, err
	}
	if s.clock.Now().After(clearance.ExpiresAt) {
		return nil, core.ErrTokenExpired
	}
	return clearance, nil
}

func (s *CaptchaService) publish(ctx context.Context, sessionID string, d core.Difficulty, v core.Verdict) {
	if s.eventPub == nil {
		return
	}
	err := s.eventPub.PublishVerdict(ctx, ports.VerdictEvent{
		SessionID:         sessionID,
		Difficulty:        d,
		Outcome:           v.Outcome,
		AttemptsRemaining: v.AttemptsRemaining,
	})
	if err != nil {
		// Log the error but don't fail the verification
		s.log.WithError(err).WithField("session", sessionID).Warn("failed to publish verdict event")
	}
}
