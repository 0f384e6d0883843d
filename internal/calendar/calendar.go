// Package calendar implements court-day arithmetic: weekend/holiday
// predicates and the roll-forward adjustment applied to every computed
// deadline. Holiday tables are injected configuration, never hardcoded.
package calendar

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"docketline/internal/config"
)

// Calendar answers court-day questions for a set of jurisdictions.
// All methods are pure functions over the precomputed holiday sets;
// the only side effect is a WARN log when asked about a date beyond
// the covered year range, where holiday-aware math silently degrades
// to weekend-only adjustment.
type Calendar struct {
	sets     map[string]map[string]bool
	coverage map[string][2]int // jurisdiction -> min/max year with holiday data
	log      *zap.Logger

	mu     sync.Mutex
	warned map[string]bool
}

// New builds a Calendar from per-jurisdiction calendar configs,
// resolving extends links so a state set is the union of its parent's
// holidays and its own additions.
func New(cfgs map[string]config.CalendarConfig, log *zap.Logger) (*Calendar, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Calendar{
		sets:     map[string]map[string]bool{},
		coverage: map[string][2]int{},
		log:      log,
		warned:   map[string]bool{},
	}
	for name := range cfgs {
		set := map[string]bool{}
		minYear, maxYear := 0, 0
		cur := name
		for cur != "" {
			cc, ok := cfgs[cur]
			if !ok {
				return nil, fmt.Errorf("calendar %s extends unknown calendar %s", name, cur)
			}
			for year, dates := range cc.Holidays {
				if minYear == 0 || year < minYear {
					minYear = year
				}
				if year > maxYear {
					maxYear = year
				}
				for _, d := range dates {
					if _, err := time.Parse(time.DateOnly, d); err != nil {
						return nil, fmt.Errorf("calendar %s holiday %q: %w", cur, d, err)
					}
					set[d] = true
				}
			}
			cur = cc.Extends
		}
		c.sets[name] = set
		c.coverage[name] = [2]int{minYear, maxYear}
	}
	return c, nil
}

// IsWeekend reports whether d falls on a Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether d is a recognized court holiday in the
// given jurisdiction.
func (c *Calendar) IsHoliday(d time.Time, jurisdiction string) bool {
	c.checkCoverage(d, jurisdiction)
	return c.sets[jurisdiction][d.Format(time.DateOnly)]
}

// IsCourtDay reports whether d is neither a weekend nor a holiday.
func (c *Calendar) IsCourtDay(d time.Time, jurisdiction string) bool {
	return !IsWeekend(d) && !c.IsHoliday(d, jurisdiction)
}

// AdjustForHolidaysAndWeekends rolls d strictly forward, day by day,
// until a court day is reached. Deadlines never roll backward.
func (c *Calendar) AdjustForHolidaysAndWeekends(d time.Time, jurisdiction string) time.Time {
	for !c.IsCourtDay(d, jurisdiction) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// AddBusinessDays walks forward from start until n court days have
// been traversed. The start date itself is never counted.
func (c *Calendar) AddBusinessDays(start time.Time, n int, jurisdiction string) time.Time {
	if n < 0 {
		return c.SubtractBusinessDays(start, -n, jurisdiction)
	}
	d := start
	for counted := 0; counted < n; {
		d = d.AddDate(0, 0, 1)
		if c.IsCourtDay(d, jurisdiction) {
			counted++
		}
	}
	return d
}

// SubtractBusinessDays walks backward from start until n court days
// have been traversed.
func (c *Calendar) SubtractBusinessDays(start time.Time, n int, jurisdiction string) time.Time {
	if n < 0 {
		return c.AddBusinessDays(start, -n, jurisdiction)
	}
	d := start
	for counted := 0; counted < n; {
		d = d.AddDate(0, 0, -1)
		if c.IsCourtDay(d, jurisdiction) {
			counted++
		}
	}
	return d
}

// CountBusinessDaysBetween counts court days in the half-open interval
// [a, b). Arguments may be given in either order.
func (c *Calendar) CountBusinessDaysBetween(a, b time.Time, jurisdiction string) int {
	if a.After(b) {
		a, b = b, a
	}
	count := 0
	for d := a; d.Before(b); d = d.AddDate(0, 0, 1) {
		if c.IsCourtDay(d, jurisdiction) {
			count++
		}
	}
	return count
}

// Covered reports whether the jurisdiction's holiday table covers the
// year of d.
func (c *Calendar) Covered(d time.Time, jurisdiction string) bool {
	cov, ok := c.coverage[jurisdiction]
	if !ok || cov[1] == 0 {
		return false
	}
	return d.Year() >= cov[0] && d.Year() <= cov[1]
}

// checkCoverage logs once per jurisdiction/year when holiday data is
// missing for the requested date. Adjustment still proceeds with
// weekend-only semantics; this is accepted operational degradation.
func (c *Calendar) checkCoverage(d time.Time, jurisdiction string) {
	if c.Covered(d, jurisdiction) {
		return
	}
	key := fmt.Sprintf("%s/%d", jurisdiction, d.Year())
	c.mu.Lock()
	already := c.warned[key]
	if !already {
		c.warned[key] = true
	}
	c.mu.Unlock()
	if !already {
		c.log.Warn("date outside holiday table range; weekend-only adjustment",
			zap.String("jurisdiction", jurisdiction),
			zap.Int("year", d.Year()))
	}
}
