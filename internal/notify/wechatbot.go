package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"subscription-tracker-be/internal/entity"
)

type WechatBotChannel struct {
	Client *http.Client
}

func NewWechatBotChannel() *WechatBotChannel {
	return &WechatBotChannel{Client: defaultClient()}
}

func (c *WechatBotChannel) Name() string { return entity.NotifierWechatBot }

type wechatText struct {
	Content             string   `json:"content"`
	MentionedList       []string `json:"mentioned_list,omitempty"`
	MentionedMobileList []string `json:"mentioned_mobile_list,omitempty"`
}

type wechatMarkdown struct {
	Content string `json:"content"`
}

type wechatMessage struct {
	MsgType  string          `json:"msgtype"`
	Text     *wechatText     `json:"text,omitempty"`
	Markdown *wechatMarkdown `json:"markdown,omitempty"`
}

func (c *WechatBotChannel) Send(ctx context.Context, msg Message, settings *entity.Settings) error {
	if settings.WechatBotWebhook == "" {
		return fmt.Errorf("wechatbot: %w", ErrNotConfigured)
	}

	content := StripMarkdown(msg.Content)
	var body wechatMessage
	if settings.WechatBotMsgType == "markdown" {
		body = wechatMessage{
			MsgType:  "markdown",
			Markdown: &wechatMarkdown{Content: "# " + msg.Title + "\n\n" + content},
		}
	} else {
		// mentions are only supported by text messages
		text := &wechatText{Content: msg.Title + "\n\n" + content}
		if settings.WechatBotAtAll {
			text.MentionedList = []string{"@all"}
		} else if settings.WechatBotAtMobiles != "" {
			for _, m := range strings.Split(settings.WechatBotAtMobiles, ",") {
				if m = strings.TrimSpace(m); m != "" {
					text.MentionedMobileList = append(text.MentionedMobileList, m)
				}
			}
		}
		body = wechatMessage{MsgType: "text", Text: text}
	}

	data, err := doJSON(ctx, c.Client, http.MethodPost, settings.WechatBotWebhook, nil, body)
	if err != nil {
		return fmt.Errorf("wechatbot: %w", err)
	}

	var result struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("wechatbot: decode response: %w", err)
	}
	if result.ErrCode != 0 {
		return fmt.Errorf("wechatbot: errcode %d: %s", result.ErrCode, result.ErrMsg)
	}
	return nil
}
