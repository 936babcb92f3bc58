package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"subscription-tracker-be/internal/entity"
)

type BarkChannel struct {
	Client *http.Client
}

func NewBarkChannel() *BarkChannel {
	return &BarkChannel{Client: defaultClient()}
}

func (c *BarkChannel) Name() string { return entity.NotifierBark }

func (c *BarkChannel) Send(ctx context.Context, msg Message, settings *entity.Settings) error {
	if settings.BarkDeviceKey == "" {
		return fmt.Errorf("bark: %w", ErrNotConfigured)
	}

	server := strings.TrimRight(settings.BarkServer, "/")
	if server == "" {
		server = entity.DefaultBarkServer
	}

	body := map[string]interface{}{
		"title":      msg.Title,
		"body":       StripMarkdown(msg.Content),
		"device_key": settings.BarkDeviceKey,
	}
	if settings.BarkIsArchive {
		body["isArchive"] = 1
	}

	data, err := doJSON(ctx, c.Client, http.MethodPost, server+"/push", nil, body)
	if err != nil {
		return fmt.Errorf("bark: %w", err)
	}

	var result struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("bark: decode response: %w", err)
	}
	if result.Code != http.StatusOK {
		return fmt.Errorf("bark: code %d: %s", result.Code, result.Message)
	}
	return nil
}
