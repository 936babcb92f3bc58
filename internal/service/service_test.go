package service

import (
	"context"
	"testing"
	"time"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/internal/repository/implementation"
	"subscription-tracker-be/pkg/kvstore"

	"github.com/stretchr/testify/require"
)

// 2024-04-15 09:00 UTC, a Monday.
var fixedNow = time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store         *kvstore.MemoryStore
	subscriptions contract.SubscriptionRepository
	settings      contract.SettingsRepository
	statuses      contract.SchedulerStatusRepository
	dedup         contract.DedupRepository
	rates         contract.ExchangeRateRepository
	now           time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kvstore.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	return &fixture{
		store:         store,
		subscriptions: implementation.NewSubscriptionRepository(store),
		settings:      implementation.NewSettingsRepository(store),
		statuses:      implementation.NewSchedulerStatusRepository(store),
		dedup:         implementation.NewDedupRepository(store),
		rates:         implementation.NewExchangeRateRepository(store),
		now:           fixedNow,
	}
}

func (f *fixture) clock() time.Time {
	return f.now
}

func (f *fixture) subscriptionService() ISubscriptionService {
	return NewSubscriptionService(f.subscriptions, f.settings, logger.NewNopLogger(), f.clock)
}

func (f *fixture) seed(t *testing.T, subs ...entity.Subscription) {
	t.Helper()
	require.NoError(t, f.subscriptions.SaveAll(context.Background(), subs))
}

func (f *fixture) updateSettings(t *testing.T, mutate func(s *entity.Settings)) {
	t.Helper()
	s := entity.DefaultSettings()
	mutate(&s)
	require.NoError(t, f.settings.Save(context.Background(), s))
}

func (f *fixture) load(t *testing.T, id string) entity.Subscription {
	t.Helper()
	subs, err := f.subscriptions.FindAll(context.Background())
	require.NoError(t, err)
	for _, s := range subs {
		if s.Id == id {
			return s
		}
	}
	t.Fatalf("subscription %s not stored", id)
	return entity.Subscription{}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
