package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/notify"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/period"
)

var (
	ErrNotifyDisabled = errors.New("third-party notify is disabled until an access token is configured")
	ErrNoChannel      = errors.New("no notification channel is enabled")
)

const (
	defaultTestTitle       = "Test notification"
	defaultThirdPartyTitle = "Third-party notification"
)

type INotifyService interface {
	SendTest(ctx context.Context, req *dto.TestNotificationRequest) (*entity.SendResult, error)
	TestSubscription(ctx context.Context, id string) (*entity.SendResult, error)
	// Relay forwards an external message once token matches the configured
	// third-party token.
	Relay(ctx context.Context, token string, req *dto.ThirdPartyNotifyRequest) (*entity.SendResult, error)
}

type notifyService struct {
	subscriptions contract.SubscriptionRepository
	settings      contract.SettingsRepository
	dispatcher    notify.Dispatcher
	logger        logger.ILogger
	now           func() time.Time
}

func NewNotifyService(
	subscriptions contract.SubscriptionRepository,
	settings contract.SettingsRepository,
	dispatcher notify.Dispatcher,
	log logger.ILogger,
	clock func() time.Time,
) INotifyService {
	if clock == nil {
		clock = time.Now
	}
	return &notifyService{
		subscriptions: subscriptions,
		settings:      settings,
		dispatcher:    dispatcher,
		logger:        log,
		now:           clock,
	}
}

func (s *notifyService) loadSettings(ctx context.Context) entity.Settings {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("NOTIFY", "Settings unreadable, using defaults", map[string]interface{}{"error": err.Error()})
	}
	return settings
}

func (s *notifyService) SendTest(ctx context.Context, req *dto.TestNotificationRequest) (*entity.SendResult, error) {
	settings := s.loadSettings(ctx)
	now := s.now()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultTestTitle
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		content = fmt.Sprintf("This is a test message to verify the notification channels.\n\nSent at: %s",
			now.In(settings.Location()).Format("2006-01-02 15:04:05"))
	}

	return s.send(ctx, title, content, &settings, []string{"test"})
}

func (s *notifyService) TestSubscription(ctx context.Context, id string) (*entity.SendResult, error) {
	subs, err := s.subscriptions.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("operation failed: %w", err)
	}
	i := indexOf(subs, id)
	if i == -1 {
		return nil, ErrSubscriptionNotFound
	}
	sub := subs[i]

	settings := s.loadSettings(ctx)
	now := s.now()
	loc := settings.Location()
	item := expiring(sub, period.DaysUntil(sub.ExpiryDate, now, loc), period.HoursUntil(sub.ExpiryDate, now))

	content := notify.FormatContent([]entity.ExpiringSubscription{item}, &settings, now)
	return s.send(ctx, "Manual test: "+sub.Name, content, &settings, entity.ExtractTags(sub))
}

func (s *notifyService) Relay(ctx context.Context, token string, req *dto.ThirdPartyNotifyRequest) (*entity.SendResult, error) {
	settings := s.loadSettings(ctx)
	expected := settings.ThirdPartyToken
	if expected == "" {
		return nil, ErrNotifyDisabled
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		return nil, ErrInvalidCredentials
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultThirdPartyTitle
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	s.logger.Info("NOTIFY", "Relaying third-party notification", map[string]interface{}{"title": title, "tags": tags})
	return s.send(ctx, title, content, &settings, tags)
}

func (s *notifyService) send(ctx context.Context, title, content string, settings *entity.Settings, tags []string) (*entity.SendResult, error) {
	result := s.dispatcher.Send(ctx, title, content, settings, tags)
	if result.Attempted == 0 {
		return result, ErrNoChannel
	}
	return result, nil
}
