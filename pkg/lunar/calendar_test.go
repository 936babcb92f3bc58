package lunar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolarToLunar(t *testing.T) {
	tests := []struct {
		name  string
		solar time.Time
		want  Date
		str   string
	}{
		{
			name:  "epoch",
			solar: time.Date(1900, 1, 31, 0, 0, 0, 0, time.UTC),
			want:  Date{Year: 1900, Month: 1, Day: 1},
			str:   "庚子年正月初一",
		},
		{
			name:  "new year 2024",
			solar: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			want:  Date{Year: 2024, Month: 1, Day: 1},
			str:   "甲辰年正月初一",
		},
		{
			name:  "eve of new year 2024",
			solar: time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
			want:  Date{Year: 2023, Month: 12, Day: 30},
			str:   "癸卯年腊月三十",
		},
		{
			name:  "mid autumn 2024",
			solar: time.Date(2024, 9, 17, 0, 0, 0, 0, time.UTC),
			want:  Date{Year: 2024, Month: 8, Day: 15},
			str:   "甲辰年八月十五",
		},
		{
			name:  "leap second month 2023",
			solar: time.Date(2023, 3, 22, 0, 0, 0, 0, time.UTC),
			want:  Date{Year: 2023, Month: 2, Day: 1, IsLeap: true},
			str:   "癸卯年闰二月初一",
		},
		{
			name:  "leap fourth month 2020",
			solar: time.Date(2020, 5, 23, 0, 0, 0, 0, time.UTC),
			want:  Date{Year: 2020, Month: 4, Day: 1, IsLeap: true},
			str:   "庚子年闰四月初一",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SolarToLunar(tt.solar.Year(), tt.solar.Month(), tt.solar.Day())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

func TestSolarToLunar_OutOfRange(t *testing.T) {
	for _, d := range []time.Time{
		time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(1900, 1, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2101, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		_, err := SolarToLunar(d.Year(), d.Month(), d.Day())
		assert.ErrorIs(t, err, ErrOutOfRange, d.Format("2006-01-02"))
	}
}

func TestYearDaysMatchesMonthSum(t *testing.T) {
	for y := MinYear; y <= MaxYear; y++ {
		sum := LeapDays(y)
		for m := 1; m <= 12; m++ {
			sum += MonthDays(y, m)
		}
		require.Equal(t, sum, YearDays(y), "year %d", y)
	}
}

// Every supported solar day must survive a round trip.
func TestRoundTripEveryDay(t *testing.T) {
	start := time.Date(1900, 1, 31, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, 12, 31, 0, 0, 0, 0, time.UTC)

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		l, err := SolarToLunar(d.Year(), d.Month(), d.Day())
		require.NoError(t, err, d.Format("2006-01-02"))

		s, err := LunarToSolar(l)
		require.NoError(t, err, d.Format("2006-01-02"))
		require.Equal(t, Solar{Year: d.Year(), Month: d.Month(), Day: d.Day()}, s, "lunar %+v", l)
	}
}

func TestLunarToSolar_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		want error
	}{
		{name: "year before table", in: Date{Year: 1899, Month: 1, Day: 1}, want: ErrOutOfRange},
		{name: "leap flag without leap month", in: Date{Year: 2024, Month: 3, Day: 1, IsLeap: true}, want: ErrInvalidDate},
		{name: "day 30 in short month", in: Date{Year: 2023, Month: 2, Day: 30, IsLeap: true}, want: ErrInvalidDate},
		{name: "month 13", in: Date{Year: 2024, Month: 13, Day: 1}, want: ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LunarToSolar(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAddPeriod(t *testing.T) {
	tests := []struct {
		name   string
		in     Date
		amount int
		unit   Unit
		want   Date
	}{
		{
			name: "one month",
			in:   Date{Year: 2024, Month: 1, Day: 15}, amount: 1, unit: UnitMonth,
			want: Date{Year: 2024, Month: 2, Day: 15},
		},
		{
			name: "month across year end",
			in:   Date{Year: 2023, Month: 12, Day: 1}, amount: 2, unit: UnitMonth,
			want: Date{Year: 2024, Month: 2, Day: 1},
		},
		{
			name: "negative months",
			in:   Date{Year: 2024, Month: 1, Day: 1}, amount: -1, unit: UnitMonth,
			want: Date{Year: 2023, Month: 12, Day: 1},
		},
		{
			name: "leap flag dropped when target year has no such leap month",
			in:   Date{Year: 2023, Month: 2, Day: 10, IsLeap: true}, amount: 1, unit: UnitYear,
			want: Date{Year: 2024, Month: 2, Day: 10},
		},
		{
			name: "day clamped to short month",
			in:   Date{Year: 2023, Month: 12, Day: 30}, amount: 1, unit: UnitMonth,
			want: Date{Year: 2024, Month: 1, Day: MonthDays(2024, 1)},
		},
		{
			name: "days cross month boundary",
			in:   Date{Year: 2024, Month: 1, Day: 1}, amount: 30, unit: UnitDay,
			want: mustLunar(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddPeriod(tt.in, tt.amount, tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddPeriod_DayAlwaysInRange(t *testing.T) {
	for y := 1950; y <= 2050; y++ {
		for m := 1; m <= 12; m++ {
			in := Date{Year: y, Month: m, Day: MonthDays(y, m)}
			for _, unit := range []Unit{UnitMonth, UnitYear} {
				got, err := AddPeriod(in, 1, unit)
				require.NoError(t, err)
				require.NoError(t, got.Validate(), "%+v + 1 %s = %+v", in, unit, got)
			}
		}
	}
}

func TestAddPeriod_OutOfRange(t *testing.T) {
	_, err := AddPeriod(Date{Year: 2100, Month: 6, Day: 1}, 1, UnitYear)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func mustLunar(t *testing.T, d time.Time) Date {
	t.Helper()
	l, err := SolarToLunar(d.Year(), d.Month(), d.Day())
	require.NoError(t, err)
	return l
}
