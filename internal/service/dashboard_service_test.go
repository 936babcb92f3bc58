package service

import (
	"context"
	"testing"
	"time"

	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/pkg/currency"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRates struct {
	rates currency.Rates
	err   error
	calls int
}

func (s *stubRates) Latest(context.Context) (currency.Rates, error) {
	s.calls++
	return s.rates, s.err
}

func seedDashboard(t *testing.T, f *fixture) {
	t.Helper()
	f.seed(t,
		entity.Subscription{
			Id:         "a",
			Name:       "Video",
			CustomType: "Streaming",
			Category:   "media/fun",
			Currency:   "USD",
			Amount:     12,
			ExpiryDate: day(2024, 4, 20),
			IsActive:   true,
			PaymentHistory: []entity.PaymentRecord{
				{Id: "a1", Date: day(2024, 4, 10), Amount: 12},
				{Id: "a2", Date: day(2024, 3, 10), Amount: 12},
				{Id: "a3", Date: day(2023, 12, 10), Amount: 12},
			},
		},
		entity.Subscription{
			Id:         "b",
			Name:       "Cloud",
			Amount:     30,
			ExpiryDate: day(2024, 4, 16),
			IsActive:   true,
			PaymentHistory: []entity.PaymentRecord{
				{Id: "b1", Date: day(2024, 4, 14), Amount: 30.5},
				{Id: "b2", Date: day(2024, 4, 1), Amount: 0},
			},
		},
		entity.Subscription{
			Id:         "c",
			Name:       "Paused",
			ExpiryDate: day(2024, 4, 17),
			IsActive:   false,
		},
	)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	seedDashboard(t, f)
	require.NoError(t, f.statuses.Save(context.Background(), &entity.SchedulerRunStatus{Source: SourceCron, Reason: "ok"}))

	fetcher := &stubRates{rates: currency.Rates{"CNY": 1, "USD": 0.125}}
	stats, err := NewDashboardService(f.subscriptions, f.settings, f.statuses, f.rates, fetcher, logger.NewNopLogger(), f.clock).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, dto.SubscriptionCounts{Active: 2, Total: 3, ExpiringSoon: 2}, stats.Subscriptions)
	assert.Equal(t, map[string]float64{"USD": 12, "CNY": 30.5}, stats.Expense.CurrentMonth)
	assert.Equal(t, map[string]float64{"USD": 12}, stats.Expense.LastMonth)
	assert.Equal(t, map[string]float64{"USD": 24, "CNY": 30.5}, stats.Expense.CurrentYear)

	assert.Equal(t, 126.5, stats.Expense.CurrentMonthCNY)
	assert.Equal(t, 96.0, stats.Expense.LastMonthCNY)
	assert.Equal(t, 222.5, stats.Expense.CurrentYearCNY)
	assert.Equal(t, 55.63, stats.Expense.MonthlyAverageCNY)
	assert.Equal(t, 32, stats.Expense.Trend)
	assert.Equal(t, "up", stats.Expense.TrendDirection)

	assert.Equal(t, []dto.ExpenseShare{
		{Name: "Streaming", Amount: 192, Percentage: 86},
		{Name: "Uncategorized", Amount: 30.5, Percentage: 14},
	}, stats.ExpenseByType)
	assert.Equal(t, []dto.ExpenseShare{
		{Name: "fun", Amount: 96, Percentage: 43},
		{Name: "media", Amount: 96, Percentage: 43},
		{Name: "Uncategorized", Amount: 30.5, Percentage: 14},
	}, stats.ExpenseByCategory)

	require.Len(t, stats.RecentPayments, 2)
	assert.Equal(t, "Cloud", stats.RecentPayments[0].Name)
	assert.Equal(t, "Video", stats.RecentPayments[1].Name)

	require.Len(t, stats.UpcomingRenewals, 2)
	assert.Equal(t, "Cloud", stats.UpcomingRenewals[0].Name)
	assert.Equal(t, 1, stats.UpcomingRenewals[0].DaysUntilRenewal)
	assert.Equal(t, 5, stats.UpcomingRenewals[1].DaysUntilRenewal)

	require.NotNil(t, stats.SchedulerStatus)
	assert.Equal(t, "ok", stats.SchedulerStatus.Reason)
	assert.Len(t, stats.SchedulerStatusHistory, 1)
}

func TestDashboardStats_ExchangeRates(t *testing.T) {
	ctx := context.Background()

	t.Run("fetched rates are cached", func(t *testing.T) {
		f := newFixture(t)
		seedDashboard(t, f)
		fetcher := &stubRates{rates: currency.Rates{"CNY": 1, "USD": 0.125}}
		svc := NewDashboardService(f.subscriptions, f.settings, f.statuses, f.rates, fetcher, logger.NewNopLogger(), f.clock)

		for i := 0; i < 2; i++ {
			_, err := svc.Stats(ctx)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, fetcher.calls)

		cached, err := f.rates.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0.125, cached["USD"])
	})

	t.Run("fetch failure falls back without caching", func(t *testing.T) {
		f := newFixture(t)
		seedDashboard(t, f)
		fetcher := &stubRates{err: assert.AnError}
		svc := NewDashboardService(f.subscriptions, f.settings, f.statuses, f.rates, fetcher, logger.NewNopLogger(), f.clock)

		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 114.26, stats.Expense.CurrentMonthCNY, "12 USD at 6.98 plus 30.5 CNY")

		cached, err := f.rates.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, cached)
	})

	t.Run("no fetcher", func(t *testing.T) {
		f := newFixture(t)
		seedDashboard(t, f)
		svc := NewDashboardService(f.subscriptions, f.settings, f.statuses, f.rates, nil, logger.NewNopLogger(), f.clock)

		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 114.26, stats.Expense.CurrentMonthCNY)
	})
}

func TestLunarConvert(t *testing.T) {
	f := newFixture(t)
	svc := NewLunarService(f.settings, logger.NewNopLogger())

	got, err := svc.Convert(context.Background(), "2024-02-10")
	require.NoError(t, err)
	assert.Equal(t, &dto.LunarConvertResponse{
		Year:      2024,
		Month:     1,
		Day:       1,
		YearName:  "甲辰年",
		MonthName: "正月",
		DayName:   "初一",
		FullStr:   "甲辰年正月初一",
	}, got)

	_, err = svc.Convert(context.Background(), "1850-01-01")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Convert(context.Background(), "not-a-date")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLunarConvert_UsesSettingsTimezone(t *testing.T) {
	f := newFixture(t)
	f.updateSettings(t, func(s *entity.Settings) { s.Timezone = "Asia/Shanghai" })

	// 2024-02-09 20:00 UTC is already the lunar new year in Shanghai
	got, err := NewLunarService(f.settings, logger.NewNopLogger()).Convert(context.Background(), time.Date(2024, 2, 9, 20, 0, 0, 0, time.UTC).Format(time.RFC3339))
	require.NoError(t, err)
	assert.Equal(t, "甲辰年正月初一", got.FullStr)
}
