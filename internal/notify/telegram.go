package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"subscription-tracker-be/internal/entity"
)

const DefaultTelegramBaseURL = "https://api.telegram.org"

type TelegramChannel struct {
	BaseURL string
	Client  *http.Client
}

func NewTelegramChannel(baseURL string) *TelegramChannel {
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}
	return &TelegramChannel{BaseURL: strings.TrimRight(baseURL, "/"), Client: defaultClient()}
}

func (c *TelegramChannel) Name() string { return entity.NotifierTelegram }

func (c *TelegramChannel) Send(ctx context.Context, msg Message, settings *entity.Settings) error {
	if settings.TelegramBotToken == "" || settings.TelegramChatID == "" {
		return fmt.Errorf("telegram: %w", ErrNotConfigured)
	}

	body := map[string]string{
		"chat_id":    settings.TelegramChatID,
		"text":       "*" + msg.Title + "*\n\n" + msg.Content,
		"parse_mode": "Markdown",
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, settings.TelegramBotToken)
	data, err := doJSON(ctx, c.Client, http.MethodPost, url, nil, body)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	var result struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("telegram: decode response: %w", err)
	}
	if !result.Ok {
		return fmt.Errorf("telegram: %s", result.Description)
	}
	return nil
}
