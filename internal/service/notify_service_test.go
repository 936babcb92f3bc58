package service

import (
	"context"
	"testing"

	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) notifyService(d *recordingDispatcher) INotifyService {
	return NewNotifyService(f.subscriptions, f.settings, d, logger.NewNopLogger(), f.clock)
}

func TestNotifyRelay_TokenChecks(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		token     string
		req       dto.ThirdPartyNotifyRequest
		wantErr   error
		wantTitle string
	}{
		{name: "disabled without token", token: "abc", req: dto.ThirdPartyNotifyRequest{Content: "hi"}, wantErr: ErrNotifyDisabled},
		{name: "missing token", stored: "abc", req: dto.ThirdPartyNotifyRequest{Content: "hi"}, wantErr: ErrInvalidCredentials},
		{name: "wrong token", stored: "abc", token: "abd", req: dto.ThirdPartyNotifyRequest{Content: "hi"}, wantErr: ErrInvalidCredentials},
		{name: "empty content", stored: "abc", token: "abc", req: dto.ThirdPartyNotifyRequest{Content: "  "}, wantErr: ErrValidation},
		{name: "default title", stored: "abc", token: "abc", req: dto.ThirdPartyNotifyRequest{Content: "hi", Tags: []string{" ops ", ""}}, wantTitle: defaultThirdPartyTitle},
		{name: "custom title", stored: "abc", token: "abc", req: dto.ThirdPartyNotifyRequest{Title: "Deploy", Content: "done"}, wantTitle: "Deploy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.updateSettings(t, func(s *entity.Settings) { s.ThirdPartyToken = tt.stored })
			d := &recordingDispatcher{}

			result, err := f.notifyService(d).Relay(context.Background(), tt.token, &tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, d.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, result.SuccessCount)
			assert.Equal(t, []string{tt.wantTitle}, d.titles)
			if len(tt.req.Tags) > 0 {
				assert.Equal(t, []string{"ops"}, d.tags[0])
			}
		})
	}
}

func TestNotifySendTest_NoChannel(t *testing.T) {
	f := newFixture(t)
	f.updateSettings(t, func(s *entity.Settings) { s.EnabledNotifiers = nil })

	result, err := f.notifyService(&recordingDispatcher{}).SendTest(context.Background(), &dto.TestNotificationRequest{})
	assert.ErrorIs(t, err, ErrNoChannel)
	assert.Equal(t, 0, result.Attempted)
}

func TestNotifySendTest_DefaultsTitleAndContent(t *testing.T) {
	f := newFixture(t)
	d := &recordingDispatcher{}

	_, err := f.notifyService(d).SendTest(context.Background(), &dto.TestNotificationRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{defaultTestTitle}, d.titles)
	assert.Contains(t, d.contents[0], "Sent at: 2024-04-15 09:00:00")
}

func TestNotifyTestSubscription(t *testing.T) {
	f := newFixture(t)
	f.seed(t, entity.Subscription{
		Id:         "s1",
		Name:       "Cloud",
		CustomType: "Hosting",
		Category:   "work",
		ExpiryDate: day(2024, 4, 18),
		IsActive:   true,
	})
	d := &recordingDispatcher{}
	svc := f.notifyService(d)

	_, err := svc.TestSubscription(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	_, err = svc.TestSubscription(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Manual test: Cloud"}, d.titles)
	assert.Contains(t, d.contents[0], "Expires in 3 day(s)")
	assert.Equal(t, []string{"work", "Hosting"}, d.tags[0])
}
