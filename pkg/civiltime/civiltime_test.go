package civiltime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClock_UnknownZone(t *testing.T) {
	_, err := NewClock("Middle/Nowhere")
	require.Error(t, err)
}

func TestNewClock_DefaultsToAuckland(t *testing.T) {
	clock, err := NewClock("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, clock.Location().String())
}

func TestDayBoundsOf_OrdinaryDay(t *testing.T) {
	clock, err := NewClock("Pacific/Auckland")
	require.NoError(t, err)

	// 2025-03-10 10:00 NZDT == 2025-03-09 21:00 UTC
	instant := time.Date(2025, 3, 9, 21, 0, 0, 0, time.UTC)

	start, end := clock.DayBoundsOf(instant)
	assert.Equal(t, "2025-03-10", start.Format(DateLayout))
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestDayBoundsOf_DaylightSavingEnd(t *testing.T) {
	clock, err := NewClock("Pacific/Auckland")
	require.NoError(t, err)

	// NZ daylight saving ended 2025-04-06: clocks went back at 03:00 NZDT,
	// making the civil day 25 hours long.
	start, end, err := clock.BoundsForDate("2025-04-06")
	require.NoError(t, err)
	assert.Equal(t, 25*time.Hour, end.Sub(start))
}

func TestDayBoundsOf_DaylightSavingStart(t *testing.T) {
	clock, err := NewClock("Pacific/Auckland")
	require.NoError(t, err)

	// NZ daylight saving started 2025-09-28: clocks went forward at 02:00,
	// making the civil day 23 hours long.
	start, end, err := clock.BoundsForDate("2025-09-28")
	require.NoError(t, err)
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}

func TestBoundsForDate_Invalid(t *testing.T) {
	clock, err := NewClock("Pacific/Auckland")
	require.NoError(t, err)

	_, _, err = clock.BoundsForDate("10/03/2025")
	require.Error(t, err)
}

func TestSameCivilDay_CrossesUTCDate(t *testing.T) {
	clock, err := NewClock("Pacific/Auckland")
	require.NoError(t, err)

	// Both instants are 2025-03-10 in Auckland even though they straddle the
	// UTC date line.
	morning := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)  // 09:00 NZDT Mar 10
	evening := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)  // 21:00 NZDT Mar 10
	nextDay := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) // 01:00 NZDT Mar 11

	assert.True(t, clock.SameCivilDay(morning, evening))
	assert.False(t, clock.SameCivilDay(evening, nextDay))
}

func TestNewClockAt_FreezesNow(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock, err := NewClockAt("Pacific/Auckland", at)
	require.NoError(t, err)

	assert.Equal(t, at, clock.Now())
	assert.Equal(t, at, clock.Now(), "frozen clock must not advance")
}

func TestMonthOf(t *testing.T) {
	clock, err := NewClock("Pacific/Auckland")
	require.NoError(t, err)

	// 2025-01-31 23:00 UTC is already February in Auckland.
	year, month := clock.MonthOf(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.February, month)
}
