// Package chain expands a rule template into concrete dated deadlines
// relative to a trigger date. This is the densest logic in the system:
// date arithmetic mistakes here are malpractice-grade, so every step
// of each computation is recorded in a human-readable basis trace.
package chain

import (
	"fmt"
	"time"

	"docketline/internal/calendar"
	"docketline/internal/config"
)

// ComputedDeadline is one calculated deadline before persistence.
type ComputedDeadline struct {
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	DeadlineDate     string `json:"deadline_date" format:"date"`
	DeadlineType     string `json:"deadline_type,omitempty"`
	Priority         string `json:"priority"`
	PartyRole        string `json:"party_role,omitempty"`
	ActionRequired   string `json:"action_required,omitempty"`
	ApplicableRule   string `json:"applicable_rule,omitempty"`
	CalculationBasis string `json:"calculation_basis"`
	OffsetDays       int    `json:"offset_days"`
	AddServiceDays   bool   `json:"add_service_days"`
}

// Calculator computes dependent deadlines using a court calendar and
// the configured service-method day allotments. It is stateless per
// invocation and safe for concurrent use.
type Calculator struct {
	Calendar *calendar.Calendar
	Config   *config.Config
}

func New(cal *calendar.Calendar, cfg *config.Config) Calculator {
	return Calculator{Calendar: cal, Config: cfg}
}

// Calculate expands every spec of tmpl against triggerDate, in template
// order. The trigger date is used as-is even when it is not a court
// day; only computed results are adjusted. A template with zero specs
// yields an empty chain.
func (c Calculator) Calculate(triggerDate time.Time, tmpl config.RuleTemplate, serviceMethod string) []ComputedDeadline {
	out := make([]ComputedDeadline, 0, len(tmpl.Deadlines))
	for _, spec := range tmpl.Deadlines {
		raw, basis := c.rawOffsetDate(triggerDate, spec, tmpl.Jurisdiction)
		if spec.AddServiceDays {
			if extra := c.Config.ServiceDays(serviceMethod); extra > 0 {
				raw = raw.AddDate(0, 0, extra)
				basis += fmt.Sprintf("; +%d service days (%s) = %s", extra, serviceMethod, raw.Format(time.DateOnly))
			}
		}
		adjusted := c.Calendar.AdjustForHolidaysAndWeekends(raw, tmpl.Jurisdiction)
		if !adjusted.Equal(raw) {
			basis += fmt.Sprintf("; rolled forward to court day %s", adjusted.Format(time.DateOnly))
		}
		out = append(out, ComputedDeadline{
			Title:            spec.Title,
			Description:      spec.Description,
			DeadlineDate:     adjusted.Format(time.DateOnly),
			DeadlineType:     spec.DeadlineType,
			Priority:         spec.Priority,
			PartyRole:        spec.PartyRole,
			ActionRequired:   spec.ActionRequired,
			ApplicableRule:   spec.Citation,
			CalculationBasis: basis,
			OffsetDays:       spec.OffsetDays,
			AddServiceDays:   spec.AddServiceDays,
		})
	}
	return out
}

// rawOffsetDate applies the signed offset in the spec's calculation
// method and returns the pre-adjustment date with a basis trace.
func (c Calculator) rawOffsetDate(trigger time.Time, spec config.DeadlineSpec, jurisdiction string) (time.Time, string) {
	n := spec.OffsetDays
	abs := n
	direction := "after"
	if n < 0 {
		abs = -n
		direction = "before"
	}
	var raw time.Time
	var unit string
	switch spec.Method {
	case config.MethodBusinessDays, config.MethodCourtDays:
		unit = "court days"
		if spec.Method == config.MethodBusinessDays {
			unit = "business days"
		}
		if n < 0 {
			raw = c.Calendar.SubtractBusinessDays(trigger, abs, jurisdiction)
		} else {
			raw = c.Calendar.AddBusinessDays(trigger, abs, jurisdiction)
		}
	default:
		unit = "calendar days"
		raw = trigger.AddDate(0, 0, n)
	}
	if n == 0 {
		return raw, fmt.Sprintf("same day as trigger %s", trigger.Format(time.DateOnly))
	}
	basis := fmt.Sprintf("%d %s %s trigger %s = %s",
		abs, unit, direction, trigger.Format(time.DateOnly), raw.Format(time.DateOnly))
	return raw, basis
}
