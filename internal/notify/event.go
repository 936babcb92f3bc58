package notify

import (
	"context"
	"fmt"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/pkg/events"
)

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// EventChannel publishes reminders on the event bus so other services can
// react to them.
type EventChannel struct {
	publisher EventPublisher
}

func NewEventChannel(p EventPublisher) *EventChannel {
	return &EventChannel{publisher: p}
}

func (c *EventChannel) Name() string { return entity.NotifierNats }

func (c *EventChannel) Send(ctx context.Context, msg Message, _ *entity.Settings) error {
	if c.publisher == nil {
		return fmt.Errorf("nats: %w", ErrNotConfigured)
	}
	event := events.NewReminderEvent(msg.Title, StripMarkdown(msg.Content), msg.Tags, msg.SentAt)
	if err := c.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	return nil
}
