package notify

import (
	"context"
	"fmt"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/mailer"
)

type EmailChannel struct {
	mailer mailer.IEmailService
}

func NewEmailChannel(m mailer.IEmailService) *EmailChannel {
	return &EmailChannel{mailer: m}
}

func (c *EmailChannel) Name() string { return entity.NotifierEmail }

func (c *EmailChannel) Send(_ context.Context, msg Message, settings *entity.Settings) error {
	if c.mailer == nil || settings.EmailTo == "" {
		return fmt.Errorf("email: %w", ErrNotConfigured)
	}
	if err := c.mailer.SendReminder(settings.EmailTo, msg.Title, StripMarkdown(msg.Content)); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}
