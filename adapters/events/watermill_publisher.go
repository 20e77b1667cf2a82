package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/layer-3/clockguard/ports"
)

// TopicVerdict carries one message per verification attempt
const TopicVerdict = "clockguard.verdict"

// VerdictMessage is the JSON payload of a verdict event
type VerdictMessage struct {
	SessionID         string `json:"session_id"`
	Difficulty        string `json:"difficulty"`
	Outcome           string `json:"outcome"`
	AttemptsRemaining int    `json:"attempts_remaining"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     TopicVerdict,
	}
}

// PublishVerdict publishes a verdict event
func (p *WatermillPublisher) PublishVerdict(ctx context.Context, ev ports.VerdictEvent) error {
	payload, err := json.Marshal(VerdictMessage{
		SessionID:         ev.SessionID,
		Difficulty:        ev.Difficulty.String(),
		Outcome:           string(ev.Outcome),
		AttemptsRemaining: ev.AttemptsRemaining,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("outcome", string(ev.Outcome))

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
