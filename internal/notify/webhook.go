package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"subscription-tracker-be/internal/entity"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

type WebhookChannel struct {
	Client *http.Client
}

func NewWebhookChannel() *WebhookChannel {
	return &WebhookChannel{Client: defaultClient()}
}

func (c *WebhookChannel) Name() string { return entity.NotifierWebhook }

func (c *WebhookChannel) Send(ctx context.Context, msg Message, settings *entity.Settings) error {
	if settings.WebhookURL == "" {
		return fmt.Errorf("webhook: %w", ErrNotConfigured)
	}

	headers := map[string]string{}
	if settings.WebhookHeaders != "" {
		// malformed custom headers fall back to the defaults
		_ = json.Unmarshal([]byte(settings.WebhookHeaders), &headers)
	}

	method := strings.ToUpper(settings.WebhookMethod)
	if method == "" {
		method = http.MethodPost
	}

	body := webhookBody(msg, settings)
	if _, err := doJSON(ctx, c.Client, method, settings.WebhookURL, headers, body); err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

func webhookBody(msg Message, settings *entity.Settings) interface{} {
	content := StripMarkdown(msg.Content)

	tags := make([]string, 0, len(msg.Tags))
	for _, t := range msg.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	var tagsBlock, tagsLine string
	if len(tags) > 0 {
		tagsBlock = "- " + strings.Join(tags, "\n- ")
		tagsLine = "Tags: " + strings.Join(tags, ", ")
	}

	timestamp := msg.SentAt.In(settings.Location()).Format("2006-01-02 15:04:05")
	sections := make([]string, 0, 4)
	for _, s := range []string{msg.Title, content, tagsLine, "Sent at: " + timestamp} {
		if strings.TrimSpace(s) != "" {
			sections = append(sections, s)
		}
	}
	message := strings.Join(sections, "\n\n")

	if settings.WebhookTemplate != "" {
		data := map[string]string{
			"title":            msg.Title,
			"content":          content,
			"tags":             tagsBlock,
			"tagsLine":         tagsLine,
			"rawTags":          strings.Join(tags, ","),
			"timestamp":        timestamp,
			"formattedMessage": message,
			"message":          message,
		}
		if rendered, ok := applyTemplate(settings.WebhookTemplate, data); ok {
			return rendered
		}
	}

	return map[string]interface{}{
		"title":     msg.Title,
		"content":   content,
		"tags":      tags,
		"tagsLine":  tagsLine,
		"timestamp": timestamp,
		"message":   message,
	}
}

// applyTemplate substitutes {{key}} placeholders inside a JSON template with
// JSON-escaped values. Unknown keys become empty strings. It reports false
// when the template or the result is not valid JSON.
func applyTemplate(template string, data map[string]string) (json.RawMessage, bool) {
	if !json.Valid([]byte(template)) {
		return nil, false
	}
	out := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		key := placeholderPattern.FindStringSubmatch(m)[1]
		v, ok := data[key]
		if !ok {
			return ""
		}
		quoted, _ := json.Marshal(v)
		return string(quoted[1 : len(quoted)-1])
	})
	if !json.Valid([]byte(out)) {
		return nil, false
	}
	return json.RawMessage(out), true
}
