package notify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"subscription-tracker-be/internal/entity"
	"subscription-tracker-be/pkg/lunar"
	"subscription-tracker-be/pkg/reminder"
)

const ReminderTitle = "Subscription expiry / renewal reminder"

var (
	headingPattern  = regexp.MustCompile(`(?m)^[ \t]*#+[ \t]*`)
	markdownPattern = regexp.MustCompile("\\*+|#+|`")
)

// StripMarkdown removes emphasis, heading and code markers. A heading marker
// takes the blanks around it along.
func StripMarkdown(s string) string {
	s = headingPattern.ReplaceAllString(s, "")
	return markdownPattern.ReplaceAllString(s, "")
}

var unitNames = map[string]string{
	"day":   "day(s)",
	"month": "month(s)",
	"year":  "year(s)",
}

// FormatContent renders the reminder body for a batch of matches.
func FormatContent(items []entity.ExpiringSubscription, settings *entity.Settings, now time.Time) string {
	loc := settings.Location()
	var b strings.Builder

	for _, sub := range items {
		typeText := sub.CustomType
		if typeText == "" {
			typeText = "Other"
		}
		categoryText := sub.Category
		if categoryText == "" {
			categoryText = "Uncategorized"
		}

		var periodText string
		if sub.PeriodValue > 0 && sub.PeriodUnit != "" {
			unit, ok := unitNames[string(sub.PeriodUnit)]
			if !ok {
				unit = string(sub.PeriodUnit)
			}
			periodText = fmt.Sprintf(" (every %d %s)", sub.PeriodValue, unit)
		}

		var statusEmoji, statusText string
		switch {
		case sub.DaysRemaining == 0:
			statusEmoji, statusText = "⚠️", "Expires today!"
		case sub.DaysRemaining < 0:
			statusEmoji, statusText = "🚨", fmt.Sprintf("Expired %d day(s) ago", -sub.DaysRemaining)
		default:
			statusEmoji, statusText = "📅", fmt.Sprintf("Expires in %d day(s)", sub.DaysRemaining)
		}

		calendarType := "Solar"
		if sub.UseLunar {
			calendarType = "Lunar"
		}
		autoRenew := "No"
		if sub.AutoRenew {
			autoRenew = "Yes"
		}

		fmt.Fprintf(&b, "%s **%s**\n", statusEmoji, sub.Name)
		fmt.Fprintf(&b, "Type: %s%s\n", typeText, periodText)
		fmt.Fprintf(&b, "Category: %s\n", categoryText)
		if sub.Amount > 0 {
			fmt.Fprintf(&b, "Amount: %.2f %s per period\n", sub.Amount, sub.Currency)
		}
		fmt.Fprintf(&b, "Calendar: %s\n", calendarType)
		fmt.Fprintf(&b, "Expiry date: %s\n", sub.ExpiryDate.In(loc).Format("2006-01-02"))
		if settings.ShowLunar {
			if l, err := lunar.SolarTimeToLunar(sub.ExpiryDate, loc); err == nil {
				fmt.Fprintf(&b, "Lunar date: %s\n", l.String())
			}
		}
		fmt.Fprintf(&b, "Auto renew: %s\n", autoRenew)
		fmt.Fprintf(&b, "%s\n", reminderText(sub.Reminder()))
		fmt.Fprintf(&b, "Status: %s", statusText)
		if sub.Notes != "" {
			fmt.Fprintf(&b, "\nNotes: %s", sub.Notes)
		}
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Sent at: %s\nTimezone: %s", now.In(loc).Format("2006-01-02 15:04:05"), timezoneDisplay(loc, now))
	return b.String()
}

func reminderText(r reminder.Setting) string {
	unit := "day(s)"
	suffix := ""
	if r.Unit == reminder.UnitHour {
		unit = "hour(s)"
		suffix = " (hourly)"
	}
	if r.Value == 0 {
		suffix = " (on expiry only)"
	}
	return fmt.Sprintf("Reminder: %s %s ahead%s", strconv.FormatFloat(r.Value, 'f', -1, 64), unit, suffix)
}

func timezoneDisplay(loc *time.Location, now time.Time) string {
	_, offset := now.In(loc).Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s (UTC%s%02d:%02d)", loc.String(), sign, offset/3600, (offset%3600)/60)
}
