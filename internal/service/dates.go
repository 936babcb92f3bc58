package service

import (
	"fmt"
	"strings"
	"time"

	"subscription-tracker-be/pkg/lunar"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate reads an API date. Values without an offset are taken in loc.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrValidation)
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, value)
}

func parseOptionalDate(value string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// requireLunarRange rejects dates whose lunar form falls outside the table.
func requireLunarRange(t time.Time, loc *time.Location) error {
	if _, err := lunar.SolarTimeToLunar(t, loc); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
