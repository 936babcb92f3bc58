package service

import (
	"context"
	"fmt"

	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/pkg/events"
	pktNats "subscription-tracker-be/pkg/nats"
)

// EventSubscriber is satisfied by *nats.Subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// NotificationAuditService records every reminder published on the event
// bus into the notification log.
type NotificationAuditService struct {
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewNotificationAuditService(sub EventSubscriber, log logger.ILogger) *NotificationAuditService {
	return &NotificationAuditService{
		subscriber: sub,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationAuditService) Start(ctx context.Context) error {
	subject := pktNats.Subject(">")
	if err := s.subscriber.Subscribe(ctx, subject, "reminder-audit", s.handleEvent); err != nil {
		s.logger.Error("NOTIFY", "Failed to start notification audit subscriber", map[string]interface{}{"error": err})
		return err
	}
	s.logger.Info("NOTIFY", fmt.Sprintf("Notification audit listening to %s", subject), nil)
	return nil
}

func (s *NotificationAuditService) handleEvent(_ context.Context, event events.Event) error {
	details := map[string]interface{}{
		"type":       event.EventType(),
		"occurredAt": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		if k == "content" {
			continue
		}
		details[k] = v
	}
	s.logger.Info("NOTIFY", "Reminder event published", details)
	return nil
}
