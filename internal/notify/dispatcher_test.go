package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChannel struct {
	name  string
	err   error
	calls int
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(_ context.Context, _ Message, _ *entity.Settings) error {
	s.calls++
	return s.err
}

func TestDispatcher_OneFailureDoesNotBlockOthers(t *testing.T) {
	tg := &stubChannel{name: entity.NotifierTelegram, err: errors.New("boom")}
	bark := &stubChannel{name: entity.NotifierBark}
	webhook := &stubChannel{name: entity.NotifierWebhook}

	d := NewDispatcher(logger.NewNopLogger(), tg, bark, webhook)
	settings := entity.DefaultSettings()
	settings.EnabledNotifiers = []string{entity.NotifierTelegram, entity.NotifierBark}

	result := d.Send(context.Background(), "t", "c", &settings, nil)

	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, map[string]bool{entity.NotifierTelegram: false, entity.NotifierBark: true}, result.ChannelResults)
	assert.Equal(t, 0, webhook.calls, "disabled channel is skipped")
}

func TestDispatcher_NothingEnabled(t *testing.T) {
	ch := &stubChannel{name: entity.NotifierBark}
	d := NewDispatcher(logger.NewNopLogger(), ch)
	settings := entity.DefaultSettings()
	settings.EnabledNotifiers = nil

	result := d.Send(context.Background(), "t", "c", &settings, nil)
	assert.Equal(t, 0, result.Attempted)
	assert.Equal(t, 0, ch.calls)
}

func decodeBody(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestTelegramChannel(t *testing.T) {
	var got map[string]interface{}
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		got = decodeBody(t, r)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	settings := entity.DefaultSettings()
	settings.TelegramBotToken = "123:abc"
	settings.TelegramChatID = "42"

	err := NewTelegramChannel(srv.URL).Send(context.Background(), Message{Title: "Hi", Content: "body"}, &settings)
	require.NoError(t, err)
	assert.Equal(t, "/bot123:abc/sendMessage", path)
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "*Hi*\n\nbody", got["text"])
	assert.Equal(t, "Markdown", got["parse_mode"])
}

func TestTelegramChannel_NotConfigured(t *testing.T) {
	settings := entity.DefaultSettings()
	err := NewTelegramChannel("").Send(context.Background(), Message{}, &settings)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNotifyXChannel(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr bool
	}{
		{name: "queued", reply: `{"status":"queued"}`},
		{name: "rejected", reply: `{"status":"error"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var path string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			settings := entity.DefaultSettings()
			settings.NotifyXAPIKey = "key"
			err := NewNotifyXChannel(srv.URL+"/send").Send(context.Background(), Message{Title: "t", Content: "c"}, &settings)
			assert.Equal(t, "/send/key", path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWebhookChannel_TemplateAndHeaders(t *testing.T) {
	var got map[string]interface{}
	var method, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		auth = r.Header.Get("Authorization")
		got = decodeBody(t, r)
	}))
	defer srv.Close()

	settings := entity.DefaultSettings()
	settings.WebhookURL = srv.URL
	settings.WebhookMethod = "put"
	settings.WebhookHeaders = `{"Authorization":"Bearer x"}`
	settings.WebhookTemplate = `{"text":"{{ title }}: {{content}}","tags":"{{tagsLine}}","missing":"{{nope}}"}`

	msg := Message{Title: "Due", Content: "**Netflix** \"soon\"", Tags: []string{"a", " ", "b"}, SentAt: time.Now()}
	require.NoError(t, NewWebhookChannel().Send(context.Background(), msg, &settings))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "Bearer x", auth)
	assert.Equal(t, `Due: Netflix "soon"`, got["text"])
	assert.Equal(t, "Tags: a, b", got["tags"])
	assert.Equal(t, "", got["missing"])
}

func TestWebhookChannel_BadTemplateFallsBack(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = decodeBody(t, r)
	}))
	defer srv.Close()

	settings := entity.DefaultSettings()
	settings.WebhookURL = srv.URL
	settings.WebhookTemplate = `{not json`

	require.NoError(t, NewWebhookChannel().Send(context.Background(), Message{Title: "Due", Content: "c", SentAt: time.Now()}, &settings))
	assert.Equal(t, "Due", got["title"])
	assert.True(t, strings.HasPrefix(got["message"].(string), "Due\n\nc\n\nSent at: "))
}

func TestWebhookChannel_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	settings := entity.DefaultSettings()
	settings.WebhookURL = srv.URL
	assert.Error(t, NewWebhookChannel().Send(context.Background(), Message{SentAt: time.Now()}, &settings))
}

func TestWechatBotChannel(t *testing.T) {
	tests := []struct {
		name      string
		msgType   string
		atAll     bool
		atMobiles string
		reply     string
		check     func(t *testing.T, body map[string]interface{})
		wantErr   bool
	}{
		{
			name:    "text mentions all",
			msgType: "text",
			atAll:   true,
			reply:   `{"errcode":0}`,
			check: func(t *testing.T, body map[string]interface{}) {
				text := body["text"].(map[string]interface{})
				assert.Equal(t, "Due\n\nNetflix", text["content"])
				assert.Equal(t, []interface{}{"@all"}, text["mentioned_list"])
			},
		},
		{
			name:      "text mentions mobiles",
			msgType:   "text",
			atMobiles: "138, ,139",
			reply:     `{"errcode":0}`,
			check: func(t *testing.T, body map[string]interface{}) {
				text := body["text"].(map[string]interface{})
				assert.Equal(t, []interface{}{"138", "139"}, text["mentioned_mobile_list"])
			},
		},
		{
			name:    "markdown",
			msgType: "markdown",
			reply:   `{"errcode":0}`,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "markdown", body["msgtype"])
				md := body["markdown"].(map[string]interface{})
				assert.Equal(t, "# Due\n\nNetflix", md["content"])
			},
		},
		{
			name:    "api error",
			msgType: "text",
			reply:   `{"errcode":93000,"errmsg":"invalid webhook"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = decodeBody(t, r)
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			settings := entity.DefaultSettings()
			settings.WechatBotWebhook = srv.URL
			settings.WechatBotMsgType = tt.msgType
			settings.WechatBotAtAll = tt.atAll
			settings.WechatBotAtMobiles = tt.atMobiles

			err := NewWechatBotChannel().Send(context.Background(), Message{Title: "Due", Content: "**Netflix**"}, &settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestBarkChannel(t *testing.T) {
	var got map[string]interface{}
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		got = decodeBody(t, r)
		_, _ = w.Write([]byte(`{"code":200,"message":"success"}`))
	}))
	defer srv.Close()

	settings := entity.DefaultSettings()
	settings.BarkServer = srv.URL + "/"
	settings.BarkDeviceKey = "device"
	settings.BarkIsArchive = true

	require.NoError(t, NewBarkChannel().Send(context.Background(), Message{Title: "Due", Content: "## body"}, &settings))
	assert.Equal(t, "/push", path)
	assert.Equal(t, "device", got["device_key"])
	assert.Equal(t, "body", got["body"])
	assert.Equal(t, float64(1), got["isArchive"])
}

type stubMailer struct {
	to, subject, body string
	err               error
}

func (m *stubMailer) SendReminder(to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

func TestEmailChannel(t *testing.T) {
	m := &stubMailer{}
	settings := entity.DefaultSettings()

	ch := NewEmailChannel(m)
	assert.ErrorIs(t, ch.Send(context.Background(), Message{}, &settings), ErrNotConfigured)

	settings.EmailTo = "me@example.com"
	require.NoError(t, ch.Send(context.Background(), Message{Title: "Due", Content: "`x`"}, &settings))
	assert.Equal(t, "me@example.com", m.to)
	assert.Equal(t, "Due", m.subject)
	assert.Equal(t, "x", m.body)
}

type stubPublisher struct {
	events []events.Event
}

func (p *stubPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func TestEventChannel(t *testing.T) {
	pub := &stubPublisher{}
	settings := entity.DefaultSettings()
	at := time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, NewEventChannel(pub).Send(context.Background(), Message{Title: "Due", Content: "**x**", Tags: []string{"a"}, SentAt: at}, &settings))
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeReminderSent, pub.events[0].EventType())
	assert.Equal(t, "x", pub.events[0].Payload()["content"])
	assert.Equal(t, at, pub.events[0].Timestamp())

	assert.ErrorIs(t, NewEventChannel(nil).Send(context.Background(), Message{}, &settings), ErrNotConfigured)
}
