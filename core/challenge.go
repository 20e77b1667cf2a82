package core

import "time"

// Challenge is the secret dial position plus the parameters derived from its difficulty
type Challenge struct {
	Target           ClockTime
	Difficulty       Difficulty
	ToleranceMinutes int
}

// Accepts reports whether answer lies inside the tolerance window
func (c Challenge) Accepts(answer ClockTime) bool {
	return c.Target.Distance(answer) <= c.ToleranceMinutes
}

// Clearance is the proof handed to a client that passed a challenge
type Clearance struct {
	ID         string     // Unique token identifier
	SessionID  string     // Session that was solved
	Difficulty Difficulty // Level that was solved
	IssuedAt   time.Time
	ExpiresAt  time.Time
}
