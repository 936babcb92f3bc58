package reminder

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type Unit string

const (
	UnitDay  Unit = "day"
	UnitHour Unit = "hour"
)

const DefaultDays = 7

// Setting is the resolved reminder policy of a subscription. Value keeps
// fractions, so 2.5 hours means two and a half hours.
type Setting struct {
	Unit  Unit    `json:"unit"`
	Value float64 `json:"value"`
}

// Number is a loosely typed numeric input. It accepts JSON numbers and numeric
// strings; anything else decodes as present but invalid.
type Number struct {
	Value float64
	Set   bool
	Valid bool
}

func NumberOf(v float64) Number {
	return Number{Value: v, Set: true, Valid: true}
}

// NumberFromPtr maps a stored optional value to a Number.
func NumberFromPtr(v *float64) Number {
	if v == nil {
		return Number{}
	}
	return NumberOf(*v)
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	n.Set = true

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		n.Value, n.Valid = f, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			n.Value, n.Valid = 0, true
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
			n.Value, n.Valid = f, true
			return nil
		}
	}
	n.Value, n.Valid = 0, false
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Source carries the raw reminder fields of a subscription, including the
// legacy reminderDays / reminderHours fields.
type Source struct {
	Unit  string
	Value Number
	Days  Number
	Hours Number
}

// Resolve derives the effective setting. Unknown units fall back to days,
// missing values to the legacy fields, then to 7 days (or 0 hours).
// Negative and non-numeric values clamp to 0.
func Resolve(src Source) Setting {
	unit := UnitDay
	if src.Unit == string(UnitHour) {
		unit = UnitHour
	}

	var value float64
	if unit == UnitHour {
		switch {
		case src.Value.Set && src.Value.Valid:
			value = src.Value.Value
		case src.Hours.Set && src.Hours.Valid:
			value = src.Hours.Value
		default:
			value = 0
		}
	} else {
		switch {
		case src.Value.Set && src.Value.Valid:
			value = src.Value.Value
		case src.Days.Set && src.Days.Valid:
			value = src.Days.Value
		default:
			value = DefaultDays
		}
	}

	if value < 0 || math.IsNaN(value) {
		value = 0
	}
	return Setting{Unit: unit, Value: value}
}

// ShouldTrigger decides whether a reminder fires for an expiry daysDiff days
// (relative to local midnight) and hoursDiff hours (relative to now) away.
func ShouldTrigger(s Setting, daysDiff int, hoursDiff float64) bool {
	if s.Unit == UnitHour {
		if s.Value == 0 {
			return hoursDiff >= 0 && hoursDiff < 1
		}
		return hoursDiff >= 0 && hoursDiff <= s.Value
	}
	if s.Value == 0 {
		return daysDiff == 0
	}
	return daysDiff >= 0 && float64(daysDiff) <= s.Value
}
