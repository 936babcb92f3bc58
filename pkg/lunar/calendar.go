package lunar

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOutOfRange  = errors.New("lunar date out of supported range (1900-2100)")
	ErrInvalidDate = errors.New("invalid lunar date")
)

// epoch is solar 1900-01-31, lunar 1900-01-01.
var epoch = time.Date(1900, time.January, 31, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// Date is a lunar calendar date. The zero value is not a valid date.
type Date struct {
	Year   int  `json:"year"`
	Month  int  `json:"month"`
	Day    int  `json:"day"`
	IsLeap bool `json:"isLeap"`
}

// Solar is a plain Gregorian calendar date.
type Solar struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// Time returns midnight of the solar date in loc.
func (s Solar) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(s.Year, s.Month, s.Day, 0, 0, 0, 0, loc)
}

// YearName returns the sexagenary name of the year, e.g. 甲辰年.
func (d Date) YearName() string {
	return heavenlyStems[mod(d.Year-4, 10)] + earthlyBranches[mod(d.Year-4, 12)] + "年"
}

func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	prefix := ""
	if d.IsLeap {
		prefix = "闰"
	}
	return prefix + monthNames[d.Month-1] + "月"
}

func (d Date) DayName() string {
	if d.Day < 1 || d.Day > 30 {
		return ""
	}
	return dayNames[d.Day-1]
}

func (d Date) String() string {
	return d.YearName() + d.MonthName() + d.DayName()
}

// SolarToLunar converts a Gregorian date. Solar years outside 1900-2100 and
// dates before the lunar epoch report ErrOutOfRange.
func SolarToLunar(year int, month time.Month, dayOfMonth int) (Date, error) {
	if !inRange(year) {
		return Date{}, ErrOutOfRange
	}
	target := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
	offset := int(target.Sub(epoch) / day)
	if offset < 0 {
		return Date{}, ErrOutOfRange
	}

	lunarYear := MinYear
	for ; lunarYear <= MaxYear; lunarYear++ {
		days := YearDays(lunarYear)
		if offset < days {
			break
		}
		offset -= days
	}
	if lunarYear > MaxYear {
		return Date{}, ErrOutOfRange
	}

	leap := LeapMonth(lunarYear)
	for m := 1; m <= 12; m++ {
		days := MonthDays(lunarYear, m)
		if offset < days {
			return Date{Year: lunarYear, Month: m, Day: offset + 1}, nil
		}
		offset -= days

		if m == leap {
			days = LeapDays(lunarYear)
			if offset < days {
				return Date{Year: lunarYear, Month: m, Day: offset + 1, IsLeap: true}, nil
			}
			offset -= days
		}
	}
	// unreachable with a consistent table
	return Date{}, fmt.Errorf("%w: offset overflow in year %d", ErrInvalidDate, lunarYear)
}

// SolarTimeToLunar converts the calendar date of t as seen in loc.
func SolarTimeToLunar(t time.Time, loc *time.Location) (Date, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return SolarToLunar(local.Year(), local.Month(), local.Day())
}

// Validate reports whether d names an existing day of the table.
func (d Date) Validate() error {
	if !inRange(d.Year) {
		return ErrOutOfRange
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return ErrInvalidDate
	}
	maxDay := MonthDays(d.Year, d.Month)
	if d.IsLeap {
		if LeapMonth(d.Year) != d.Month {
			return ErrInvalidDate
		}
		maxDay = LeapDays(d.Year)
	}
	if d.Day > maxDay {
		return ErrInvalidDate
	}
	return nil
}

// LunarToSolar converts a lunar date back to Gregorian by summing day offsets
// from the epoch. It is the exact inverse of SolarToLunar over the table range.
func LunarToSolar(d Date) (Solar, error) {
	if err := d.Validate(); err != nil {
		return Solar{}, err
	}

	offset := 0
	for y := MinYear; y < d.Year; y++ {
		offset += YearDays(y)
	}

	leap := LeapMonth(d.Year)
	for m := 1; m < d.Month; m++ {
		offset += MonthDays(d.Year, m)
		if m == leap {
			offset += LeapDays(d.Year)
		}
	}
	if d.IsLeap {
		offset += MonthDays(d.Year, d.Month)
	}
	offset += d.Day - 1

	t := epoch.AddDate(0, 0, offset)
	if !inRange(t.Year()) {
		return Solar{}, ErrOutOfRange
	}
	return Solar{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
