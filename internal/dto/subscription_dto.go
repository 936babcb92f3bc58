package dto

import (
	"subscription-tracker-be/pkg/reminder"
)

// SubscriptionRequest is the body of create and update calls. Dates accept
// RFC 3339 timestamps or plain YYYY-MM-DD days.
type SubscriptionRequest struct {
	Name             string          `json:"name" validate:"required"`
	CustomType       string          `json:"customType"`
	Category         *string         `json:"category"`
	SubscriptionMode string          `json:"subscriptionMode" validate:"omitempty,oneof=cycle reset"`
	StartDate        string          `json:"startDate"`
	ExpiryDate       string          `json:"expiryDate" validate:"required"`
	PeriodValue      int             `json:"periodValue" validate:"gte=0"`
	PeriodUnit       string          `json:"periodUnit" validate:"omitempty,oneof=day month year"`
	ReminderUnit     *string         `json:"reminderUnit"`
	ReminderValue    reminder.Number `json:"reminderValue"`
	ReminderDays     reminder.Number `json:"reminderDays"`
	ReminderHours    reminder.Number `json:"reminderHours"`
	Notes            string          `json:"notes"`
	Amount           *float64        `json:"amount" validate:"omitempty,gte=0"`
	Currency         string          `json:"currency"`
	IsActive         *bool           `json:"isActive"`
	AutoRenew        *bool           `json:"autoRenew"`
	UseLunar         bool            `json:"useLunar"`
}

type RenewRequest struct {
	PaymentDate      string   `json:"paymentDate"`
	Amount           *float64 `json:"amount" validate:"omitempty,gte=0"`
	PeriodMultiplier int      `json:"periodMultiplier" validate:"gte=0,lte=1200"`
	Note             string   `json:"note"`
}

type UpdatePaymentRequest struct {
	Date   string   `json:"date"`
	Amount *float64 `json:"amount" validate:"omitempty,gte=0"`
	Note   *string  `json:"note"`
}

type ToggleStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}
