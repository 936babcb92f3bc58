package entity

import (
	"regexp"
	"strings"
	"time"

	"subscription-tracker-be/pkg/period"
	"subscription-tracker-be/pkg/reminder"
)

type PaymentType string

const (
	PaymentTypeInitial PaymentType = "initial"
	PaymentTypeManual  PaymentType = "manual"
	PaymentTypeAuto    PaymentType = "auto"
)

const DefaultCurrency = "CNY"

// PaymentRecord is one entry of a subscription's payment history, covering
// the billing window [PeriodStart, PeriodEnd].
type PaymentRecord struct {
	Id          string      `json:"id"`
	Date        time.Time   `json:"date"`
	Amount      float64     `json:"amount"`
	Type        PaymentType `json:"type"`
	Note        string      `json:"note"`
	PeriodStart *time.Time  `json:"periodStart,omitempty"`
	PeriodEnd   *time.Time  `json:"periodEnd,omitempty"`
}

// Subscription is stored as one element of the "subscriptions" document.
// ExpiryDate is the current due date.
type Subscription struct {
	Id               string          `json:"id"`
	Name             string          `json:"name"`
	CustomType       string          `json:"customType"`
	Category         string          `json:"category"`
	SubscriptionMode period.Mode     `json:"subscriptionMode"`
	StartDate        *time.Time      `json:"startDate"`
	ExpiryDate       time.Time       `json:"expiryDate"`
	PeriodValue      int             `json:"periodValue"`
	PeriodUnit       period.Unit     `json:"periodUnit"`
	ReminderUnit     reminder.Unit   `json:"reminderUnit"`
	ReminderValue    *float64        `json:"reminderValue,omitempty"`
	ReminderDays     *float64        `json:"reminderDays,omitempty"`  // legacy
	ReminderHours    *float64        `json:"reminderHours,omitempty"` // legacy
	Notes            string          `json:"notes"`
	Amount           float64         `json:"amount"`
	Currency         string          `json:"currency"`
	LastPaymentDate  *time.Time      `json:"lastPaymentDate,omitempty"`
	PaymentHistory   []PaymentRecord `json:"paymentHistory"`
	IsActive         bool            `json:"isActive"`
	AutoRenew        bool            `json:"autoRenew"`
	UseLunar         bool            `json:"useLunar"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        *time.Time      `json:"updatedAt,omitempty"`
}

func (s *Subscription) ReminderSource() reminder.Source {
	return reminder.Source{
		Unit:  string(s.ReminderUnit),
		Value: reminder.NumberFromPtr(s.ReminderValue),
		Days:  reminder.NumberFromPtr(s.ReminderDays),
		Hours: reminder.NumberFromPtr(s.ReminderHours),
	}
}

func (s *Subscription) Reminder() reminder.Setting {
	return reminder.Resolve(s.ReminderSource())
}

// ApplyReminder stores a resolved setting, keeping the legacy field of the
// active unit in sync for older readers.
func (s *Subscription) ApplyReminder(r reminder.Setting) {
	v := r.Value
	s.ReminderUnit = r.Unit
	s.ReminderValue = &v
	s.ReminderDays, s.ReminderHours = nil, nil
	if r.Unit == reminder.UnitHour {
		s.ReminderHours = &v
	} else {
		s.ReminderDays = &v
	}
}

func (s *Subscription) Mode() period.Mode {
	if s.SubscriptionMode == period.ModeReset {
		return period.ModeReset
	}
	return period.ModeCycle
}

func (s *Subscription) PeriodSpec(loc *time.Location) period.Spec {
	return period.Spec{
		Value:    s.PeriodValue,
		Unit:     s.PeriodUnit,
		UseLunar: s.UseLunar,
		Mode:     s.Mode(),
		Location: loc,
	}
}

// Clone returns a deep copy so callers can mutate without touching a
// collection they have not decided to save.
func (s Subscription) Clone() Subscription {
	out := s
	out.StartDate = cloneTime(s.StartDate)
	out.LastPaymentDate = cloneTime(s.LastPaymentDate)
	out.UpdatedAt = cloneTime(s.UpdatedAt)
	out.ReminderValue = cloneFloat(s.ReminderValue)
	out.ReminderDays = cloneFloat(s.ReminderDays)
	out.ReminderHours = cloneFloat(s.ReminderHours)
	if s.PaymentHistory != nil {
		out.PaymentHistory = make([]PaymentRecord, len(s.PaymentHistory))
		for i, p := range s.PaymentHistory {
			p.PeriodStart = cloneTime(p.PeriodStart)
			p.PeriodEnd = cloneTime(p.PeriodEnd)
			out.PaymentHistory[i] = p
		}
	}
	return out
}

// ExpiringSubscription is a subscription matched by a scheduler pass.
type ExpiringSubscription struct {
	Subscription
	DaysRemaining  int `json:"daysRemaining"`
	HoursRemaining int `json:"hoursRemaining"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

var categorySeparator = regexp.MustCompile(`[/，,\s]+`)

// Categories returns the non-empty parts of Category.
func (s Subscription) Categories() []string {
	out := make([]string, 0)
	for _, part := range categorySeparator.Split(s.Category, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ExtractTags collects the distinct category parts and custom types of subs,
// in first-seen order.
func ExtractTags(subs ...Subscription) []string {
	seen := map[string]bool{}
	tags := make([]string, 0)
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, sub := range subs {
		for _, part := range sub.Categories() {
			add(part)
		}
		add(sub.CustomType)
	}
	return tags
}
