package implementation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/pkg/currency"
	"subscription-tracker-be/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewSubscriptionRepository(store)

	subs, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	expiry := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveAll(ctx, []entity.Subscription{{Id: "a", Name: "Netflix", ExpiryDate: expiry}}))

	subs, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Netflix", subs[0].Name)
	assert.True(t, expiry.Equal(subs[0].ExpiryDate))
}

func TestSubscriptionRepository_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, SubscriptionsKey, []byte(`{"not":"a list"}`), 0))

	_, err := NewSubscriptionRepository(store).FindAll(ctx)
	assert.Error(t, err)
}

func TestSettingsRepository_Defaults(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewSettingsRepository(store)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultSettings(), got)

	require.NoError(t, store.Put(ctx, SettingsKey, []byte(`{"timezone":"Asia/Shanghai","paymentHistoryLimit":5000}`), 0))
	got, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", got.Timezone)
	assert.Equal(t, 1000, got.PaymentHistoryLimit)
	assert.Equal(t, entity.DefaultBarkServer, got.BarkServer)

	require.NoError(t, store.Put(ctx, SettingsKey, []byte(`{`), 0))
	got, err = repo.Get(ctx)
	assert.Error(t, err)
	assert.Equal(t, entity.DefaultSettings(), got)
}

func TestSchedulerStatusRepository_CapsHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewSchedulerStatusRepository(kvstore.NewMemoryStore())

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	for i := 0; i < entity.SchedulerHistoryLimit+5; i++ {
		require.NoError(t, repo.Save(ctx, &entity.SchedulerRunStatus{Reason: fmt.Sprintf("run %d", i)}))
	}

	latest, err = repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run 24", latest.Reason)

	history, err := repo.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, entity.SchedulerHistoryLimit)
	assert.Equal(t, "run 24", history[0].Reason)
	assert.Equal(t, "run 5", history[len(history)-1].Reason)
}

func TestDedupRepository_CheckAndMark(t *testing.T) {
	ctx := context.Background()
	repo := NewDedupRepository(kvstore.NewMemoryStore())
	bucket := entity.ReminderBucket(time.Date(2024, 4, 15, 9, 42, 0, 0, time.UTC))
	assert.Equal(t, "2024-04-15T09", bucket)

	seen, err := repo.CheckAndMark(ctx, "sub-1", bucket)
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = repo.CheckAndMark(ctx, "sub-1", bucket)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = repo.CheckAndMark(ctx, "sub-1", "2024-04-15T10")
	require.NoError(t, err)
	assert.False(t, seen, "a new hour is a new bucket")

	seen, err = repo.CheckAndMark(ctx, "sub-2", bucket)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestReminderBucket_UsesUTC(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	assert.Equal(t, "2024-04-15T01", entity.ReminderBucket(time.Date(2024, 4, 15, 9, 0, 0, 0, shanghai)))
}

func TestExchangeRateRepository(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewExchangeRateRepository(store)

	rates, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, rates)

	require.NoError(t, repo.Save(ctx, currency.Rates{"CNY": 1, "USD": 0.14}))
	rates, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, currency.Rates{"CNY": 1, "USD": 0.14}, rates)

	require.NoError(t, store.Put(ctx, ExchangeRatesKey, []byte("nope"), 0))
	_, err = repo.Get(ctx)
	assert.Error(t, err)
}
