package dto

import (
	"time"

	"subscription-tracker-be/internal/entity"
)

type SubscriptionCounts struct {
	Active       int `json:"active"`
	Total        int `json:"total"`
	ExpiringSoon int `json:"expiringSoon"`
}

// ExpenseSummary holds the raw amounts keyed by currency next to their CNY
// conversions.
type ExpenseSummary struct {
	CurrentMonth map[string]float64 `json:"currentMonth"`
	LastMonth    map[string]float64 `json:"lastMonth"`
	CurrentYear  map[string]float64 `json:"currentYear"`

	CurrentMonthCNY   float64 `json:"currentMonthCny"`
	LastMonthCNY      float64 `json:"lastMonthCny"`
	CurrentYearCNY    float64 `json:"currentYearCny"`
	MonthlyAverageCNY float64 `json:"monthlyAverageCny"`

	// Trend is the absolute month over month change in percent.
	Trend          int    `json:"trend"`
	TrendDirection string `json:"trendDirection"`
}

type ExpenseShare struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage int     `json:"percentage"`
}

type RecentPayment struct {
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	CustomType  string    `json:"customType"`
	PaymentDate time.Time `json:"paymentDate"`
	Note        string    `json:"note"`
}

type UpcomingRenewal struct {
	Name             string    `json:"name"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	CustomType       string    `json:"customType"`
	RenewalDate      time.Time `json:"renewalDate"`
	DaysUntilRenewal int       `json:"daysUntilRenewal"`
}

type DashboardStatsResponse struct {
	Subscriptions          SubscriptionCounts          `json:"subscriptions"`
	Expense                ExpenseSummary              `json:"expense"`
	RecentPayments         []RecentPayment             `json:"recentPayments"`
	UpcomingRenewals       []UpcomingRenewal           `json:"upcomingRenewals"`
	ExpenseByType          []ExpenseShare              `json:"expenseByType"`
	ExpenseByCategory      []ExpenseShare              `json:"expenseByCategory"`
	SchedulerStatus        *entity.SchedulerRunStatus  `json:"schedulerStatus"`
	SchedulerStatusHistory []entity.SchedulerRunStatus `json:"schedulerStatusHistory"`
}
