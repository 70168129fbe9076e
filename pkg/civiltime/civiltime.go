// Package civiltime resolves wall-clock dates to day boundaries in the
// portal's fixed civil timezone. Every date-boundary decision (same-day
// collision checks, day filters, month grouping) goes through a Clock so the
// behaviour is identical regardless of server-local time.
package civiltime

import (
	"fmt"
	"time"
)

// DefaultTimezone is the civil timezone used when the config does not name one.
const DefaultTimezone = "Pacific/Auckland"

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// Clock converts between absolute instants and civil days in one fixed
// timezone, and supplies the current time so services stay deterministic
// under test.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock loads the named IANA timezone and returns a Clock backed by the
// system time.
func NewClock(timezone string) (*Clock, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}

	return &Clock{loc: loc, now: time.Now}, nil
}

// NewClockAt returns a Clock whose Now always reports the given instant.
// Intended for tests that need deterministic day boundaries and expiries.
func NewClockAt(timezone string, at time.Time) (*Clock, error) {
	c, err := NewClock(timezone)
	if err != nil {
		return nil, err
	}
	c.now = func() time.Time { return at }
	return c, nil
}

// Now returns the current instant.
func (c *Clock) Now() time.Time {
	return c.now()
}

// Location returns the civil timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// DayStart returns the first instant of the civil day containing t.
func (c *Clock) DayStart(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// DayBoundsOf returns the half-open interval [start, end) of the civil day
// containing t. The interval is computed from the timezone database, so a day
// spanning a daylight-saving transition is 23 or 25 hours long.
func (c *Clock) DayBoundsOf(t time.Time) (start, end time.Time) {
	start = c.DayStart(t)
	end = start.AddDate(0, 0, 1)
	return start, end
}

// BoundsForDate parses a civil date in DateLayout and returns its [start, end)
// interval as absolute instants.
func (c *Clock) BoundsForDate(date string) (start, end time.Time, err error) {
	parsed, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
	}
	start, end = c.DayBoundsOf(parsed)
	return start, end, nil
}

// SameCivilDay reports whether two instants fall on the same civil day.
func (c *Clock) SameCivilDay(a, b time.Time) bool {
	ay, am, ad := a.In(c.loc).Date()
	by, bm, bd := b.In(c.loc).Date()
	return ay == by && am == bm && ad == bd
}

// CivilDate formats the civil date containing t.
func (c *Clock) CivilDate(t time.Time) string {
	return t.In(c.loc).Format(DateLayout)
}

// MonthOf returns the civil year and month containing t, used for
// consecutive-month streaks.
func (c *Clock) MonthOf(t time.Time) (int, time.Month) {
	local := t.In(c.loc)
	return local.Year(), local.Month()
}
