package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddSolar_CarriesOverflow(t *testing.T) {
	tests := []struct {
		name   string
		in     time.Time
		amount int
		unit   Unit
		want   time.Time
	}{
		{name: "plain days", in: date(2024, 1, 30), amount: 3, unit: Day, want: date(2024, 2, 2)},
		{name: "jan 31 plus one month in leap year", in: date(2024, 1, 31), amount: 1, unit: Month, want: date(2024, 3, 2)},
		{name: "jan 31 plus one month", in: date(2023, 1, 31), amount: 1, unit: Month, want: date(2023, 3, 3)},
		{name: "feb 29 plus one year", in: date(2024, 2, 29), amount: 1, unit: Year, want: date(2025, 3, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddSolar(tt.in, tt.amount, tt.unit))
		})
	}
}

func TestAdd_Lunar(t *testing.T) {
	// lunar 2024-01-01 is solar 2024-02-10; one lunar month later is 2024-03-10
	got, err := Add(date(2024, 2, 10), 1, Month, true, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 10), got)
}

func TestAdd_LunarOutOfRange(t *testing.T) {
	_, err := Add(date(2100, 6, 1), 1, Year, true, time.UTC)
	assert.Error(t, err)
}

func TestCatchUp_MonthlyOverdue(t *testing.T) {
	now := time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC)
	spec := Spec{Value: 1, Unit: Month, Mode: ModeCycle}

	got, added, err := CatchUp(date(2024, 1, 31), now, spec)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, date(2024, 5, 2), got)
	assert.True(t, got.After(now))
}

func TestCatchUp_ResetModeRestartsFromNow(t *testing.T) {
	now := time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC)
	spec := Spec{Value: 7, Unit: Day, Mode: ModeReset}

	got, added, err := CatchUp(date(2024, 1, 1), now, spec)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, now.AddDate(0, 0, 7), got)
}

func TestCatchUp_NotOverdue(t *testing.T) {
	now := date(2024, 1, 1)
	expiry := date(2024, 2, 1)

	got, added, err := CatchUp(expiry, now, Spec{Value: 1, Unit: Month})
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, expiry, got)
}

func TestCatchUp_InvalidSpec(t *testing.T) {
	_, _, err := CatchUp(date(2024, 1, 1), date(2024, 2, 1), Spec{Value: 0, Unit: Month})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, _, err = CatchUp(date(2024, 1, 1), date(2024, 2, 1), Spec{Value: 1, Unit: "week"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestCatchUp_Lunar(t *testing.T) {
	now := date(2024, 5, 1)
	got, added, err := CatchUp(date(2024, 2, 10), now, Spec{Value: 1, Unit: Month, UseLunar: true})
	require.NoError(t, err)
	assert.True(t, got.After(now))
	assert.Equal(t, 3, added)
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 4, 15, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysUntil(date(2024, 4, 15), now, time.UTC))
	assert.Equal(t, 1, DaysUntil(time.Date(2024, 4, 15, 20, 0, 0, 0, time.UTC), now, time.UTC))
	assert.Equal(t, 1, DaysUntil(date(2024, 4, 16), now, time.UTC))
	assert.Equal(t, -5, DaysUntil(date(2024, 4, 10), now, time.UTC))
}
