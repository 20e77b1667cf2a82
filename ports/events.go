package ports

import (
	"context"

	"github.com/layer-3/clockguard/core"
)

// VerdictEvent is emitted after every verification attempt
type VerdictEvent struct {
	SessionID         string
	Difficulty        core.Difficulty
	Outcome           core.Outcome
	AttemptsRemaining int
}

// EventPublisher publishes verdicts to interested consumers
type EventPublisher interface {
	PublishVerdict(ctx context.Context, event VerdictEvent) error
}
