package events

import "time"

// Event defines the contract for all published events.
type Event interface {
	// EventType names the event; it becomes the last subject token.
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

const TypeReminderSent = "reminder"

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewReminderEvent(title, content string, tags []string, at time.Time) BaseEvent {
	if tags == nil {
		tags = []string{}
	}
	return BaseEvent{
		Type: TypeReminderSent,
		Data: map[string]interface{}{
			"title":      title,
			"content":    content,
			"tags":       tags,
			"occurredAt": at.UTC().Format(time.RFC3339),
		},
		OccurredAt: at,
	}
}
