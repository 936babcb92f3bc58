package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"subscription-tracker-be/internal/dto"
	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/internal/pkg/logger"
	"subscription-tracker-be/internal/repository/contract"
	"subscription-tracker-be/pkg/currency"
)

const (
	dashboardWindow = 7 * 24 * time.Hour
	uncategorized   = "Uncategorized"
)

// RateFetcher is satisfied by *currency.Client.
type RateFetcher interface {
	Latest(ctx context.Context) (currency.Rates, error)
}

type IDashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStatsResponse, error)
}

type dashboardService struct {
	subscriptions contract.SubscriptionRepository
	settings      contract.SettingsRepository
	statuses      contract.SchedulerStatusRepository
	rates         contract.ExchangeRateRepository
	fetcher       RateFetcher
	logger        logger.ILogger
	now           func() time.Time
}

func NewDashboardService(
	subscriptions contract.SubscriptionRepository,
	settings contract.SettingsRepository,
	statuses contract.SchedulerStatusRepository,
	rates contract.ExchangeRateRepository,
	fetcher RateFetcher,
	log logger.ILogger,
	clock func() time.Time,
) IDashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &dashboardService{
		subscriptions: subscriptions,
		settings:      settings,
		statuses:      statuses,
		rates:         rates,
		fetcher:       fetcher,
		logger:        log,
		now:           clock,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	subs, err := s.subscriptions.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("operation failed: %w", err)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("SUBSCRIPTION", "Settings unreadable, using defaults", map[string]interface{}{"error": err.Error()})
	}
	loc := settings.Location()
	now := s.now()
	rates := s.exchangeRates(ctx)

	resp := &dto.DashboardStatsResponse{
		Expense:           expenseSummary(subs, rates, now, loc),
		RecentPayments:    recentPayments(subs, now),
		UpcomingRenewals:  upcomingRenewals(subs, now),
		ExpenseByType:     expenseByType(subs, rates, now, loc),
		ExpenseByCategory: expenseByCategory(subs, rates, now, loc),
	}
	resp.Subscriptions.Total = len(subs)
	for _, sub := range subs {
		if sub.IsActive {
			resp.Subscriptions.Active++
		}
	}
	resp.Subscriptions.ExpiringSoon = len(resp.UpcomingRenewals)

	// status reads are informational; a broken status document must not hide the stats
	if resp.SchedulerStatus, err = s.statuses.Latest(ctx); err != nil {
		s.logger.Warn("SCHEDULER", "Failed to read run status", map[string]interface{}{"error": err.Error()})
	}
	if resp.SchedulerStatusHistory, err = s.statuses.History(ctx); err != nil {
		s.logger.Warn("SCHEDULER", "Failed to read run history", map[string]interface{}{"error": err.Error()})
		resp.SchedulerStatusHistory = []entity.SchedulerRunStatus{}
	}
	return resp, nil
}

// exchangeRates prefers the cached table, then a fresh fetch, then the
// built-in fallback. Only fetched tables are cached.
func (s *dashboardService) exchangeRates(ctx context.Context) currency.Rates {
	cached, err := s.rates.Get(ctx)
	if err != nil {
		s.logger.Warn("CURRENCY", "Cached exchange rates unreadable", map[string]interface{}{"error": err.Error()})
	}
	if len(cached) > 0 {
		return cached
	}
	if s.fetcher == nil {
		return currency.Fallback()
	}

	fresh, err := s.fetcher.Latest(ctx)
	if err != nil {
		s.logger.Warn("CURRENCY", "Exchange rate fetch failed, using fallback rates", map[string]interface{}{"error": err.Error()})
		return currency.Fallback()
	}
	if err := s.rates.Save(ctx, fresh); err != nil {
		s.logger.Warn("CURRENCY", "Failed to cache exchange rates", map[string]interface{}{"error": err.Error()})
	}
	return fresh
}

func currencyOf(sub entity.Subscription) string {
	if sub.Currency == "" {
		return entity.DefaultCurrency
	}
	return sub.Currency
}

func expenseSummary(subs []entity.Subscription, rates currency.Rates, now time.Time, loc *time.Location) dto.ExpenseSummary {
	out := dto.ExpenseSummary{
		CurrentMonth: map[string]float64{},
		LastMonth:    map[string]float64{},
		CurrentYear:  map[string]float64{},
	}

	local := now.In(loc)
	last := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)

	var month, lastMonth, year float64
	for _, sub := range subs {
		code := currencyOf(sub)
		for _, p := range sub.PaymentHistory {
			if p.Amount <= 0 {
				continue
			}
			cny := rates.ToCNY(p.Amount, code)
			d := p.Date.In(loc)
			if d.Year() == local.Year() {
				out.CurrentYear[code] = round2(out.CurrentYear[code] + p.Amount)
				year += cny
			}
			switch {
			case d.Year() == local.Year() && d.Month() == local.Month():
				out.CurrentMonth[code] = round2(out.CurrentMonth[code] + p.Amount)
				month += cny
			case d.Year() == last.Year() && d.Month() == last.Month():
				out.LastMonth[code] = round2(out.LastMonth[code] + p.Amount)
				lastMonth += cny
			}
		}
	}

	out.CurrentMonthCNY = round2(month)
	out.LastMonthCNY = round2(lastMonth)
	out.CurrentYearCNY = round2(year)
	out.MonthlyAverageCNY = round2(year / float64(local.Month()))

	out.TrendDirection = "flat"
	switch {
	case lastMonth > 0:
		change := int(math.Round((month - lastMonth) / lastMonth * 100))
		if change > 0 {
			out.TrendDirection = "up"
		} else if change < 0 {
			out.TrendDirection = "down"
			change = -change
		}
		out.Trend = change
	case month > 0:
		out.Trend = 100
		out.TrendDirection = "up"
	}
	return out
}

// yearPayments calls fn with the CNY amount of every positive payment made
// in the current local year.
func yearPayments(subs []entity.Subscription, rates currency.Rates, now time.Time, loc *time.Location, fn func(sub entity.Subscription, cny float64)) {
	year := now.In(loc).Year()
	for _, sub := range subs {
		for _, p := range sub.PaymentHistory {
			if p.Amount <= 0 || p.Date.In(loc).Year() != year {
				continue
			}
			fn(sub, rates.ToCNY(p.Amount, currencyOf(sub)))
		}
	}
}

func expenseByType(subs []entity.Subscription, rates currency.Rates, now time.Time, loc *time.Location) []dto.ExpenseShare {
	totals := map[string]float64{}
	var total float64
	yearPayments(subs, rates, now, loc, func(sub entity.Subscription, cny float64) {
		name := sub.CustomType
		if name == "" {
			name = uncategorized
		}
		totals[name] += cny
		total += cny
	})
	return shares(totals, total)
}

// expenseByCategory splits each payment evenly across the categories of its
// subscription.
func expenseByCategory(subs []entity.Subscription, rates currency.Rates, now time.Time, loc *time.Location) []dto.ExpenseShare {
	totals := map[string]float64{}
	var total float64
	yearPayments(subs, rates, now, loc, func(sub entity.Subscription, cny float64) {
		categories := sub.Categories()
		if len(categories) == 0 {
			categories = []string{uncategorized}
		}
		for _, c := range categories {
			totals[c] += cny / float64(len(categories))
		}
		total += cny
	})
	return shares(totals, total)
}

func shares(totals map[string]float64, total float64) []dto.ExpenseShare {
	out := make([]dto.ExpenseShare, 0, len(totals))
	for name, amount := range totals {
		share := dto.ExpenseShare{Name: name, Amount: round2(amount)}
		if total > 0 {
			share.Percentage = int(math.Round(amount / total * 100))
		}
		out = append(out, share)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Amount != out[b].Amount {
			return out[a].Amount > out[b].Amount
		}
		return out[a].Name < out[b].Name
	})
	return out
}

func recentPayments(subs []entity.Subscription, now time.Time) []dto.RecentPayment {
	from := now.Add(-dashboardWindow)
	out := make([]dto.RecentPayment, 0)
	for _, sub := range subs {
		for _, p := range sub.PaymentHistory {
			if p.Amount <= 0 || p.Date.Before(from) || p.Date.After(now) {
				continue
			}
			out = append(out, dto.RecentPayment{
				Name:        sub.Name,
				Amount:      p.Amount,
				Currency:    currencyOf(sub),
				CustomType:  sub.CustomType,
				PaymentDate: p.Date,
				Note:        p.Note,
			})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].PaymentDate.After(out[b].PaymentDate)
	})
	return out
}

func upcomingRenewals(subs []entity.Subscription, now time.Time) []dto.UpcomingRenewal {
	until := now.Add(dashboardWindow)
	out := make([]dto.UpcomingRenewal, 0)
	for _, sub := range subs {
		if !sub.IsActive || sub.ExpiryDate.Before(now) || sub.ExpiryDate.After(until) {
			continue
		}
		out = append(out, dto.UpcomingRenewal{
			Name:             sub.Name,
			Amount:           sub.Amount,
			Currency:         currencyOf(sub),
			CustomType:       sub.CustomType,
			RenewalDate:      sub.ExpiryDate,
			DaysUntilRenewal: int(math.Ceil(sub.ExpiryDate.Sub(now).Hours() / 24)),
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].DaysUntilRenewal < out[b].DaysUntilRenewal
	})
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
