package lunar

import "fmt"

type Unit string

const (
	UnitDay   Unit = "day"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// AddPeriod moves a lunar date by amount units.
//
// Year and month steps keep the day of month, clamped to the target month and
// walked back until it converts to a solar date. A leap flag survives only if
// the target year has its leap month on the same month number. Month steps
// count regular months only; leap months are not separate slots.
func AddPeriod(d Date, amount int, unit Unit) (Date, error) {
	year, month, isLeap := d.Year, d.Month, d.IsLeap

	switch unit {
	case UnitDay:
		solar, err := LunarToSolar(d)
		if err != nil {
			return Date{}, err
		}
		t := solar.Time(nil).AddDate(0, 0, amount)
		return SolarToLunar(t.Year(), t.Month(), t.Day())
	case UnitYear:
		year += amount
	case UnitMonth:
		index := (year-MinYear)*12 + (month - 1) + amount
		year = floorDiv(index, 12) + MinYear
		month = mod(index, 12) + 1
	default:
		return Date{}, fmt.Errorf("%w: unknown period unit %q", ErrInvalidDate, unit)
	}

	if !inRange(year) {
		return Date{}, ErrOutOfRange
	}
	isLeap = isLeap && LeapMonth(year) == month

	maxDay := MonthDays(year, month)
	if isLeap {
		maxDay = LeapDays(year)
	}
	target := d.Day
	if target > maxDay {
		target = maxDay
	}
	for ; target > 0; target-- {
		candidate := Date{Year: year, Month: month, Day: target, IsLeap: isLeap}
		if _, err := LunarToSolar(candidate); err == nil {
			return candidate, nil
		}
	}
	return Date{}, fmt.Errorf("%w: no solar date for %d-%02d", ErrOutOfRange, year, month)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
