package notify

import (
	"context"
	"errors"
	"time"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/logger"
)

var ErrNotConfigured = errors.New("channel is not configured")

// Message is what a channel delivers. Content may carry light markdown;
// channels without markdown support strip it.
type Message struct {
	Title   string
	Content string
	Tags    []string
	SentAt  time.Time
}

type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message, settings *entity.Settings) error
}

type Dispatcher interface {
	Send(ctx context.Context, title, content string, settings *entity.Settings, tags []string) *entity.SendResult
}

type dispatcher struct {
	channels []Channel
	logger   logger.ILogger
	now      func() time.Time
}

// NewDispatcher builds a dispatcher that tries channels in the given order.
func NewDispatcher(log logger.ILogger, channels ...Channel) Dispatcher {
	return &dispatcher{
		channels: channels,
		logger:   log,
		now:      time.Now,
	}
}

// Send attempts every enabled channel sequentially. A failing channel is
// recorded and never stops the remaining ones.
func (d *dispatcher) Send(ctx context.Context, title, content string, settings *entity.Settings, tags []string) *entity.SendResult {
	result := entity.NewSendResult()
	if settings == nil {
		defaults := entity.DefaultSettings()
		settings = &defaults
	}
	if len(settings.EnabledNotifiers) == 0 {
		d.logger.Info("NOTIFY", "No notification channel enabled", nil)
		return result
	}

	msg := Message{
		Title:   title,
		Content: content,
		Tags:    tags,
		SentAt:  d.now(),
	}

	for _, ch := range d.channels {
		if !settings.NotifierEnabled(ch.Name()) {
			continue
		}

		err := ch.Send(ctx, msg, settings)
		result.Record(ch.Name(), err == nil)

		if err != nil {
			d.logger.Error("NOTIFY", "Channel delivery failed", map[string]interface{}{
				"channel": ch.Name(),
				"error":   err,
			})
			continue
		}
		d.logger.Info("NOTIFY", "Channel delivery succeeded", map[string]interface{}{"channel": ch.Name()})
	}

	return result
}
