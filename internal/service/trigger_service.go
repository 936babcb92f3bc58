package service

import (
	"context"
	"encoding/json"
	"time"

	"subscription-tracker-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const TriggerTopic = "scheduler.run"

type RunRequest struct {
	Source      string    `json:"source"`
	RequestedAt time.Time `json:"requestedAt"`
}

// ITriggerService queues evaluation passes. A single consumer runs them one
// at a time so passes in this process never overlap.
type ITriggerService interface {
	Trigger(ctx context.Context, source string) error
	Consume(ctx context.Context) error
}

type triggerService struct {
	pubSub    *gochannel.GoChannel
	scheduler ISchedulerService
	logger    logger.ILogger
}

func NewTriggerService(pubSub *gochannel.GoChannel, scheduler ISchedulerService, log logger.ILogger) ITriggerService {
	return &triggerService{
		pubSub:    pubSub,
		scheduler: scheduler,
		logger:    log,
	}
}

func (ts *triggerService) Trigger(ctx context.Context, source string) error {
	payload, err := json.Marshal(RunRequest{Source: source, RequestedAt: time.Now()})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ts.pubSub.Publish(TriggerTopic, msg)
}

func (ts *triggerService) Consume(ctx context.Context) error {
	messages, err := ts.pubSub.Subscribe(ctx, TriggerTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ts.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ts *triggerService) processMessage(ctx context.Context, msg *message.Message) {
	var req RunRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		ts.logger.Error("TRIGGER", "Dropping malformed run request", map[string]interface{}{"error": err})
		// redelivery cannot fix a malformed payload
		msg.Ack()
		return
	}

	ts.logger.Debug("TRIGGER", "Running queued scheduler pass", map[string]interface{}{
		"source":      req.Source,
		"requestedAt": req.RequestedAt.Format(time.RFC3339),
	})

	// RunOnce records its own failures, so every request is acked
	ts.scheduler.RunOnce(ctx, req.Source)
	msg.Ack()
}
