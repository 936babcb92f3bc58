package entity

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	MinPaymentHistoryLimit     = 10
	MaxPaymentHistoryLimit     = 1000
	DefaultPaymentHistoryLimit = 100

	DefaultBarkServer = "https://api.day.app"
)

// Notifier names accepted in Settings.EnabledNotifiers.
const (
	NotifierNotifyX   = "notifyx"
	NotifierTelegram  = "telegram"
	NotifierWebhook   = "webhook"
	NotifierWechatBot = "wechatbot"
	NotifierEmail     = "email"
	NotifierBark      = "bark"
	NotifierNats      = "nats"
)

// Settings is the runtime configuration document stored under "config".
type Settings struct {
	AdminUsername     string `json:"adminUsername"`
	AdminPasswordHash string `json:"adminPasswordHash,omitempty"`

	Timezone            string   `json:"timezone"`
	NotificationHours   []string `json:"notificationHours"`
	PaymentHistoryLimit int      `json:"paymentHistoryLimit"`
	ShowLunar           bool     `json:"showLunar"`
	EnabledNotifiers    []string `json:"enabledNotifiers"`
	ThirdPartyToken     string   `json:"thirdPartyToken,omitempty"`

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

func DefaultSettings() Settings {
	return Settings{
		AdminUsername:       "admin",
		Timezone:            "UTC",
		NotificationHours:   []string{},
		PaymentHistoryLimit: DefaultPaymentHistoryLimit,
		EnabledNotifiers:    []string{NotifierNotifyX},
		WebhookMethod:       "POST",
		WechatBotMsgType:    "text",
		BarkServer:          DefaultBarkServer,
	}
}

// Location resolves Timezone, falling back to UTC for unknown zones.
func (s *Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *Settings) HistoryLimit() int {
	return ClampHistoryLimit(s.PaymentHistoryLimit)
}

func (s *Settings) NotifierEnabled(name string) bool {
	for _, n := range s.EnabledNotifiers {
		if n == name {
			return true
		}
	}
	return false
}

// ClampHistoryLimit maps a non-positive limit to the default and bounds the
// rest to [10, 1000].
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaymentHistoryLimit
	}
	if limit < MinPaymentHistoryLimit {
		return MinPaymentHistoryLimit
	}
	if limit > MaxPaymentHistoryLimit {
		return MaxPaymentHistoryLimit
	}
	return limit
}

// SanitizeNotificationHours normalises hour entries to zero-padded "HH".
// "*" and "ALL" (any case) collapse to "*"; numbers clamp to 0..23.
func SanitizeNotificationHours(hours []string) []string {
	out := make([]string, 0, len(hours))
	for _, h := range hours {
		v := strings.ToUpper(strings.TrimSpace(h))
		if v == "" {
			continue
		}
		if v == "*" || v == "ALL" {
			out = append(out, "*")
			continue
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(n) {
			hour := int(math.Floor(n))
			if hour < 0 {
				hour = 0
			}
			if hour > 23 {
				hour = 23
			}
			out = append(out, strconv.Itoa(hour/10)+strconv.Itoa(hour%10))
			continue
		}
		out = append(out, v)
	}
	return out
}

// SettingsPatch carries a partial update. Nil fields keep the stored value.
type SettingsPatch struct {
	AdminUsername *string
	// AdminPasswordHash is set by the service after hashing the plain password.
	AdminPasswordHash *string

	Timezone            *string
	NotificationHours   *[]string
	PaymentHistoryLimit *int
	ShowLunar           *bool
	EnabledNotifiers    *[]string
	ThirdPartyToken     *string

	NotifyXAPIKey *string

	TelegramBotToken *string
	TelegramChatID   *string

	WebhookURL      *string
	WebhookMethod   *string
	WebhookHeaders  *string
	WebhookTemplate *string

	WechatBotWebhook   *string
	WechatBotMsgType   *string
	WechatBotAtMobiles *string
	WechatBotAtAll     *bool

	BarkServer    *string
	BarkDeviceKey *string
	BarkIsArchive *bool

	EmailTo *string
}

// Merge returns a copy of s with every non-nil patch field applied.
func (s Settings) Merge(p SettingsPatch) Settings {
	out := s
	setString(&out.AdminUsername, p.AdminUsername, true)
	setString(&out.AdminPasswordHash, p.AdminPasswordHash, true)
	setString(&out.Timezone, p.Timezone, true)
	if p.NotificationHours != nil {
		out.NotificationHours = SanitizeNotificationHours(*p.NotificationHours)
	}
	if p.PaymentHistoryLimit != nil {
		out.PaymentHistoryLimit = ClampHistoryLimit(*p.PaymentHistoryLimit)
	}
	setBool(&out.ShowLunar, p.ShowLunar)
	if p.EnabledNotifiers != nil {
		out.EnabledNotifiers = append([]string{}, (*p.EnabledNotifiers)...)
	}
	setString(&out.ThirdPartyToken, p.ThirdPartyToken, false)

	setString(&out.NotifyXAPIKey, p.NotifyXAPIKey, false)
	setString(&out.TelegramBotToken, p.TelegramBotToken, false)
	setString(&out.TelegramChatID, p.TelegramChatID, false)

	setString(&out.WebhookURL, p.WebhookURL, false)
	setString(&out.WebhookMethod, p.WebhookMethod, true)
	setString(&out.WebhookHeaders, p.WebhookHeaders, false)
	setString(&out.WebhookTemplate, p.WebhookTemplate, false)

	setString(&out.WechatBotWebhook, p.WechatBotWebhook, false)
	setString(&out.WechatBotMsgType, p.WechatBotMsgType, true)
	setString(&out.WechatBotAtMobiles, p.WechatBotAtMobiles, false)
	setBool(&out.WechatBotAtAll, p.WechatBotAtAll)

	setString(&out.BarkServer, p.BarkServer, true)
	setString(&out.BarkDeviceKey, p.BarkDeviceKey, false)
	setBool(&out.BarkIsArchive, p.BarkIsArchive)

	setString(&out.EmailTo, p.EmailTo, false)
	return out
}

// setString applies v to dst. When keepOnEmpty is set an empty string keeps
// the stored value, which protects fields that must never be blank.
func setString(dst *string, v *string, keepOnEmpty bool) {
	if v == nil {
		return
	}
	trimmed := strings.TrimSpace(*v)
	if keepOnEmpty && trimmed == "" {
		return
	}
	*dst = trimmed
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
