package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"subscription-tracker-be/internal/entity"
)

const DefaultNotifyXBaseURL = "https://www.notifyx.cn/api/v1/send"

type NotifyXChannel struct {
	BaseURL string
	Client  *http.Client
}

func NewNotifyXChannel(baseURL string) *NotifyXChannel {
	if baseURL == "" {
		baseURL = DefaultNotifyXBaseURL
	}
	return &NotifyXChannel{BaseURL: strings.TrimRight(baseURL, "/"), Client: defaultClient()}
}

func (c *NotifyXChannel) Name() string { return entity.NotifierNotifyX }

func (c *NotifyXChannel) Send(ctx context.Context, msg Message, settings *entity.Settings) error {
	if settings.NotifyXAPIKey == "" {
		return fmt.Errorf("notifyx: %w", ErrNotConfigured)
	}

	body := map[string]string{
		"title":       msg.Title,
		"content":     "## " + msg.Title + "\n\n" + msg.Content,
		"description": "Subscription reminder",
	}
	data, err := doJSON(ctx, c.Client, http.MethodPost, c.BaseURL+"/"+settings.NotifyXAPIKey, nil, body)
	if err != nil {
		return fmt.Errorf("notifyx: %w", err)
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("notifyx: decode response: %w", err)
	}
	if result.Status != "queued" {
		return fmt.Errorf("notifyx: status %q", result.Status)
	}
	return nil
}
