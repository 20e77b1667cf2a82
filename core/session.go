package core

import (
	"fmt"
	"time"
)

// State is the lifecycle position of a session
type State int

const (
	StateIssued State = iota
	StateVerified
	StateFailed
	StateExpired
	StateConsumed
)

func (s State) String() string {
	switch s {
	case StateIssued:
		return "issued"
	case StateVerified:
		return "verified"
	case StateFailed:
		return "failed"
	case StateExpired:
		return "expired"
	case StateConsumed:
		return "consumed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether s is Verified, Failed or Expired
func (s State) Terminal() bool {
	return s == StateVerified || s == StateFailed || s == StateExpired
}

// Outcome is what a verification attempt reports to the caller
type Outcome string

const (
	OutcomeVerified  Outcome = "verified"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeFailed    Outcome = "failed"
	OutcomeExpired   Outcome = "expired"
)

// Verdict is the result of one verification attempt
type Verdict struct {
	Outcome           Outcome
	AttemptsRemaining int
}

// Session tracks one issued challenge through verification
type Session struct {
	ID                string
	Challenge         Challenge
	CreatedAt         time.Time
	ExpiresAt         time.Time
	AttemptsRemaining int
	State             State
	FinalizedAt       time.Time // when a terminal state was entered
	Reported          bool      // the terminal outcome was already delivered
}

// NewSession builds an Issued session for challenge under level, starting at now.
// The id is assigned by the store.
func NewSession(challenge Challenge, level Level, now time.Time) Session {
	return Session{
		Challenge:         challenge,
		CreatedAt:         now,
		ExpiresAt:         now.Add(level.TTL),
		AttemptsRemaining: level.Attempts,
		State:             StateIssued,
	}
}

// Live reports whether the session still accepts answers at now
func (s *Session) Live(now time.Time) bool {
	return s.State == StateIssued && !now.After(s.ExpiresAt)
}

// Attempt runs one verification step of the state machine. It must be called
// inside the store's per-key critical section.
func (s *Session) Attempt(answer ClockTime, now time.Time) Verdict {
	switch {
	case s.State == StateConsumed:
		return Verdict{Outcome: OutcomeExpired}

	case s.State.Terminal():
		// A terminal outcome is reported exactly once.
		out := OutcomeExpired
		if !s.Reported {
			out = terminalOutcome(s.State)
		}
		s.State = StateConsumed
		return Verdict{Outcome: out}

	case now.After(s.ExpiresAt):
		s.finalize(StateExpired, now)
		return Verdict{Outcome: OutcomeExpired}

	case s.AttemptsRemaining <= 0:
		s.finalize(StateFailed, now)
		return Verdict{Outcome: OutcomeFailed}
	}

	s.AttemptsRemaining--
	if s.Challenge.Accepts(answer) {
		s.finalize(StateVerified, now)
		return Verdict{Outcome: OutcomeVerified, AttemptsRemaining: s.AttemptsRemaining}
	}
	if s.AttemptsRemaining == 0 {
		s.finalize(StateFailed, now)
		return Verdict{Outcome: OutcomeFailed}
	}
	return Verdict{Outcome: OutcomeIncorrect, AttemptsRemaining: s.AttemptsRemaining}
}

// finalize enters a terminal state whose outcome is delivered by the current call
func (s *Session) finalize(state State, now time.Time) {
	s.State = state
	s.FinalizedAt = now
	s.Reported = true
}

// SweepResult says what a sweep pass did to one session
type SweepResult int

const (
	SweepKeep SweepResult = iota
	SweepExpired
	SweepEvict
)

// Sweep expires an overdue Issued session and marks terminal sessions older than
// retention, and consumed sessions, for eviction.
func (s *Session) Sweep(now time.Time, retention time.Duration) SweepResult {
	switch {
	case s.State == StateConsumed:
		return SweepEvict
	case s.State == StateIssued && now.After(s.ExpiresAt):
		s.State = StateExpired
		s.FinalizedAt = now
		return SweepExpired
	case s.State.Terminal() && now.Sub(s.FinalizedAt) > retention:
		return SweepEvict
	}
	return SweepKeep
}

func terminalOutcome(s State) Outcome {
	switch s {
	case StateVerified:
		return OutcomeVerified
	case StateFailed:
		return OutcomeFailed
	default:
		return OutcomeExpired
	}
}
