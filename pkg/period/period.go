package period

import (
	"errors"
	"fmt"
	"math"
	"time"

	"subscription-tracker-be/pkg/lunar"
)

type Unit string

const (
	Day   Unit = "day"
	Month Unit = "month"
	Year  Unit = "year"
)

type Mode string

const (
	ModeCycle Mode = "cycle"
	ModeReset Mode = "reset"
)

// MaxCatchUpPeriods bounds a single catch-up so a corrupt document cannot spin forever.
const MaxCatchUpPeriods = 100000

var (
	ErrInvalidPeriod  = errors.New("invalid billing period")
	ErrTooManyPeriods = errors.New("catch-up exceeded maximum number of periods")
)

func (u Unit) Valid() bool {
	return u == Day || u == Month || u == Year
}

// Spec describes how a subscription advances.
type Spec struct {
	Value    int
	Unit     Unit
	UseLunar bool
	Mode     Mode
	Location *time.Location
}

func (s Spec) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s Spec) Validate() error {
	if s.Value < 1 {
		return fmt.Errorf("%w: period value must be positive, got %d", ErrInvalidPeriod, s.Value)
	}
	if !s.Unit.Valid() {
		return fmt.Errorf("%w: unknown unit %q", ErrInvalidPeriod, s.Unit)
	}
	return nil
}

// AddSolar adds amount units using time.AddDate normalisation: an overflowing
// day of month carries into the next month (Jan 31 + 1 month = Mar 2 or 3).
func AddSolar(t time.Time, amount int, unit Unit) time.Time {
	switch unit {
	case Day:
		return t.AddDate(0, 0, amount)
	case Month:
		return t.AddDate(0, amount, 0)
	case Year:
		return t.AddDate(amount, 0, 0)
	}
	return t
}

// Add advances t by amount units. The lunar path works on the calendar date
// of t in loc and returns local midnight of the resulting solar day.
func Add(t time.Time, amount int, unit Unit, useLunar bool, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if !useLunar {
		return AddSolar(t.In(loc), amount, unit), nil
	}

	l, err := lunar.SolarTimeToLunar(t, loc)
	if err != nil {
		return time.Time{}, err
	}
	next, err := lunar.AddPeriod(l, amount, lunar.Unit(unit))
	if err != nil {
		return time.Time{}, err
	}
	solar, err := lunar.LunarToSolar(next)
	if err != nil {
		return time.Time{}, err
	}
	return solar.Time(loc), nil
}

// Step applies one period of s to t.
func (s Spec) Step(t time.Time) (time.Time, error) {
	return Add(t, s.Value, s.Unit, s.UseLunar, s.location())
}

// CatchUp advances expiry one period at a time until it is after now and
// returns the new expiry with the number of periods applied. In reset mode
// every step restarts from now.
func CatchUp(expiry, now time.Time, s Spec) (time.Time, int, error) {
	if err := s.Validate(); err != nil {
		return expiry, 0, err
	}

	current := expiry
	added := 0
	for !current.After(now) {
		if added >= MaxCatchUpPeriods {
			return expiry, added, ErrTooManyPeriods
		}
		base := current
		if s.Mode == ModeReset {
			base = now
		}
		next, err := s.Step(base)
		if err != nil {
			return expiry, added, err
		}
		if !next.After(current) && s.Mode != ModeReset {
			return expiry, added, fmt.Errorf("%w: period does not advance %s", ErrInvalidPeriod, current.Format(time.RFC3339))
		}
		current = next
		added++
	}
	return current, added, nil
}

// DaysUntil counts whole days from local midnight of now to expiry, rounding up.
func DaysUntil(expiry, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return int(math.Ceil(expiry.Sub(midnight).Hours() / 24))
}

func HoursUntil(expiry, now time.Time) float64 {
	return expiry.Sub(now).Hours()
}
