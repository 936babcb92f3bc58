package dto

// UpdateSettingsRequest is a partial update of the runtime settings. Omitted
// fields keep their stored values.
type UpdateSettingsRequest struct {
	AdminUsername *string `json:"adminUsername"`
	AdminPassword *string `json:"adminPassword" validate:"omitempty,min=6"`

	Timezone            *string   `json:"timezone"`
	NotificationHours   *[]string `json:"notificationHours"`
	PaymentHistoryLimit *int      `json:"paymentHistoryLimit"`
	ShowLunar           *bool     `json:"showLunar"`
	EnabledNotifiers    *[]string `json:"enabledNotifiers" validate:"omitempty,dive,oneof=notifyx telegram webhook wechatbot email bark nats"`
	ThirdPartyToken     *string   `json:"thirdPartyToken"`

	NotifyXAPIKey *string `json:"notifyxApiKey"`

	TelegramBotToken *string `json:"telegramBotToken"`
	TelegramChatID   *string `json:"telegramChatId"`

	WebhookURL      *string `json:"webhookUrl" validate:"omitempty,url"`
	WebhookMethod   *string `json:"webhookMethod" validate:"omitempty,oneof=GET POST PUT PATCH"`
	WebhookHeaders  *string `json:"webhookHeaders"`
	WebhookTemplate *string `json:"webhookTemplate"`

	WechatBotWebhook   *string `json:"wechatbotWebhook" validate:"omitempty,url"`
	WechatBotMsgType   *string `json:"wechatbotMsgType" validate:"omitempty,oneof=text markdown"`
	WechatBotAtMobiles *string `json:"wechatbotAtMobiles"`
	WechatBotAtAll     *bool   `json:"wechatbotAtAll"`

	BarkServer    *string `json:"barkServer" validate:"omitempty,url"`
	BarkDeviceKey *string `json:"barkDeviceKey"`
	BarkIsArchive *bool   `json:"barkIsArchive"`

	EmailTo *string `json:"emailTo" validate:"omitempty,email"`
}

// SettingsResponse is the settings document without credentials.
type SettingsResponse struct {
	AdminUsername       string   `json:"adminUsername"`
	Timezone            string   `json:"timezone"`
	NotificationHours   []string `json:"notificationHours"`
	PaymentHistoryLimit int      `json:"paymentHistoryLimit"`
	ShowLunar           bool     `json:"showLunar"`
	EnabledNotifiers    []string `json:"enabledNotifiers"`
	ThirdPartyTokenSet  bool     `json:"thirdPartyTokenSet"`

	NotifyXAPIKey string `json:"notifyxApiKey"`

	TelegramBotToken string `json:"telegramBotToken"`
	TelegramChatID   string `json:"telegramChatId"`

	WebhookURL      string `json:"webhookUrl"`
	WebhookMethod   string `json:"webhookMethod"`
	WebhookHeaders  string `json:"webhookHeaders"`
	WebhookTemplate string `json:"webhookTemplate"`

	WechatBotWebhook   string `json:"wechatbotWebhook"`
	WechatBotMsgType   string `json:"wechatbotMsgType"`
	WechatBotAtMobiles string `json:"wechatbotAtMobiles"`
	WechatBotAtAll     bool   `json:"wechatbotAtAll"`

	BarkServer    string `json:"barkServer"`
	BarkDeviceKey string `json:"barkDeviceKey"`
	BarkIsArchive bool   `json:"barkIsArchive"`

	EmailTo string `json:"emailTo"`
}
