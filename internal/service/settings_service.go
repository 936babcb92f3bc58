package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/repository/contract"

	"golang.org/x/crypto/bcrypt"
)

type ISettingsService interface {
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
}

type settingsService struct {
	repo   contract.SettingsRepository
	logger logger.ILogger
}

func NewSettingsService(repo contract.SettingsRepository, log logger.ILogger) ISettingsService {
	return &settingsService{
		repo:   repo,
		logger: log,
	}
}

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		s.logger.Warn("SETTINGS", "Settings unreadable, serving defaults", map[string]interface{}{"error": err.Error()})
	}
	return ToSettingsResponse(settings), nil
}

func (s *settingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		// refusing here keeps a transient read error from resetting stored credentials
		return nil, fmt.Errorf("operation failed: %w", err)
	}

	if req.Timezone != nil && strings.TrimSpace(*req.Timezone) != "" {
		if _, err := time.LoadLocation(strings.TrimSpace(*req.Timezone)); err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", ErrValidation, *req.Timezone)
		}
	}

	patch := entity.SettingsPatch{
		AdminUsername:       req.AdminUsername,
		Timezone:            req.Timezone,
		NotificationHours:   req.NotificationHours,
		PaymentHistoryLimit: req.PaymentHistoryLimit,
		ShowLunar:           req.ShowLunar,
		EnabledNotifiers:    req.EnabledNotifiers,
		ThirdPartyToken:     req.ThirdPartyToken,
		NotifyXAPIKey:       req.NotifyXAPIKey,
		TelegramBotToken:    req.TelegramBotToken,
		TelegramChatID:      req.TelegramChatID,
		WebhookURL:          req.WebhookURL,
		WebhookMethod:       req.WebhookMethod,
		WebhookHeaders:      req.WebhookHeaders,
		WebhookTemplate:     req.WebhookTemplate,
		WechatBotWebhook:    req.WechatBotWebhook,
		WechatBotMsgType:    req.WechatBotMsgType,
		WechatBotAtMobiles:  req.WechatBotAtMobiles,
		WechatBotAtAll:      req.WechatBotAtAll,
		BarkServer:          req.BarkServer,
		BarkDeviceKey:       req.BarkDeviceKey,
		BarkIsArchive:       req.BarkIsArchive,
		EmailTo:             req.EmailTo,
	}

	if req.AdminPassword != nil && *req.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashed := string(hash)
		patch.AdminPasswordHash = &hashed
	}

	next := current.Merge(patch)
	if err := s.repo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("operation failed: %w", err)
	}

	s.logger.Info("SETTINGS", "Settings updated", map[string]interface{}{
		"timezone":         next.Timezone,
		"enabledNotifiers": next.EnabledNotifiers,
	})
	return ToSettingsResponse(next), nil
}

func ToSettingsResponse(s entity.Settings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		AdminUsername:       s.AdminUsername,
		Timezone:            s.Timezone,
		NotificationHours:   s.NotificationHours,
		PaymentHistoryLimit: s.HistoryLimit(),
		ShowLunar:           s.ShowLunar,
		EnabledNotifiers:    s.EnabledNotifiers,
		ThirdPartyTokenSet:  s.ThirdPartyToken != "",
		NotifyXAPIKey:       s.NotifyXAPIKey,
		TelegramBotToken:    s.TelegramBotToken,
		TelegramChatID:      s.TelegramChatID,
		WebhookURL:          s.WebhookURL,
		WebhookMethod:       s.WebhookMethod,
		WebhookHeaders:      s.WebhookHeaders,
		WebhookTemplate:     s.WebhookTemplate,
		WechatBotWebhook:    s.WechatBotWebhook,
		WechatBotMsgType:    s.WechatBotMsgType,
		WechatBotAtMobiles:  s.WechatBotAtMobiles,
		WechatBotAtAll:      s.WechatBotAtAll,
		BarkServer:          s.BarkServer,
		BarkDeviceKey:       s.BarkDeviceKey,
		BarkIsArchive:       s.BarkIsArchive,
		EmailTo:             s.EmailTo,
	}
}
