package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docketline/internal/config"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.DateOnly, s)
	require.NoError(t, err)
	return d
}

func newTestCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := New(config.Default().Calendars, nil)
	require.NoError(t, err)
	return cal
}

func TestAdjustRollsForwardToCourtDay(t *testing.T) {
	cal := newTestCalendar(t)

	// Saturday rolls to Monday.
	assert.Equal(t, date(t, "2026-02-02"), cal.AdjustForHolidaysAndWeekends(date(t, "2026-01-31"), "florida_state"))
	// Friday holiday rolls across the weekend.
	assert.Equal(t, date(t, "2026-07-06"), cal.AdjustForHolidaysAndWeekends(date(t, "2026-07-03"), "florida_state"))
	// New Year's Day (Friday) rolls to the following Monday.
	assert.Equal(t, date(t, "2027-01-04"), cal.AdjustForHolidaysAndWeekends(date(t, "2027-01-01"), "federal"))
}

func TestAdjustIsIdempotent(t *testing.T) {
	cal := newTestCalendar(t)
	d := cal.AdjustForHolidaysAndWeekends(date(t, "2026-11-26"), "florida_state")
	assert.Equal(t, d, cal.AdjustForHolidaysAndWeekends(d, "florida_state"))
}

func TestBusinessDayWalks(t *testing.T) {
	cal := newTestCalendar(t)

	// Friday + 1 court day = Monday.
	assert.Equal(t, date(t, "2026-06-08"), cal.AddBusinessDays(date(t, "2026-06-05"), 1, "florida_state"))
	// Walking back over the New Year's holiday skips it.
	assert.Equal(t, date(t, "2026-12-31"), cal.SubtractBusinessDays(date(t, "2027-01-04"), 1, "federal"))
	// The start date is never counted.
	assert.Equal(t, date(t, "2026-06-02"), cal.AddBusinessDays(date(t, "2026-06-01"), 1, "florida_state"))
	// Negative counts delegate to the opposite walk.
	assert.Equal(t,
		cal.SubtractBusinessDays(date(t, "2026-06-15"), 3, "florida_state"),
		cal.AddBusinessDays(date(t, "2026-06-15"), -3, "florida_state"))
}

func TestCountBusinessDaysBetween(t *testing.T) {
	cal := newTestCalendar(t)
	a := date(t, "2026-06-01")
	b := date(t, "2026-06-08")
	assert.Equal(t, 5, cal.CountBusinessDaysBetween(a, b, "florida_state"))
	assert.Equal(t, 5, cal.CountBusinessDaysBetween(b, a, "florida_state"))
	assert.Equal(t, 0, cal.CountBusinessDaysBetween(a, a, "florida_state"))
}

func TestExtendsUnionsParentHolidays(t *testing.T) {
	cal := newTestCalendar(t)
	assert.True(t, cal.IsHoliday(date(t, "2026-11-26"), "federal"))
	assert.True(t, cal.IsHoliday(date(t, "2026-11-26"), "florida_state"))
}

func TestUncoveredYearDegradesToWeekendAdjustment(t *testing.T) {
	cal := newTestCalendar(t)
	require.False(t, cal.Covered(date(t, "2030-01-01"), "florida_state"))
	// 2030-01-01 is a Tuesday; with no holiday data it passes as a
	// court day.
	assert.True(t, cal.IsCourtDay(date(t, "2030-01-01"), "florida_state"))
	// Weekends still roll.
	assert.Equal(t, date(t, "2030-01-07"), cal.AdjustForHolidaysAndWeekends(date(t, "2030-01-05"), "florida_state"))
}

func TestUnknownExtendsRejected(t *testing.T) {
	_, err := New(map[string]config.CalendarConfig{
		"orphaned": {Extends: "missing"},
	}, nil)
	assert.Error(t, err)
}
