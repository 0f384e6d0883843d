package chain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docketline/internal/calendar"
	"docketline/internal/catalog"
	"docketline/internal/config"
)

func newTestCalculator(t *testing.T) (Calculator, *catalog.Catalog) {
	t.Helper()
	cfg := config.Default()
	cal, err := calendar.New(cfg.Calendars, nil)
	require.NoError(t, err)
	return New(cal, cfg), catalog.Load(cfg, nil)
}

func template(t *testing.T, c *catalog.Catalog, id string) config.RuleTemplate {
	t.Helper()
	tmpl, ok := c.Template(id)
	require.True(t, ok, "template %s not loaded", id)
	return tmpl
}

func byTitle(t *testing.T, out []ComputedDeadline, title string) ComputedDeadline {
	t.Helper()
	for _, d := range out {
		if d.Title == title {
			return d
		}
	}
	t.Fatalf("deadline %q not in chain", title)
	return ComputedDeadline{}
}

func TestTrialOrderChain(t *testing.T) {
	calc, cat := newTestCalculator(t)
	tmpl := template(t, cat, "fl-civil-trial-order")
	trial := time.Date(2027, 1, 4, 0, 0, 0, 0, time.UTC) // Monday

	out := calc.Calculate(trial, tmpl, "electronic")
	require.Len(t, out, 13)

	expert := byTitle(t, out, "Plaintiff expert witness disclosure")
	assert.Equal(t, "2026-10-06", expert.DeadlineDate)
	assert.Equal(t, "critical", expert.Priority)
	assert.Equal(t, "Fla. R. Civ. P. 1.280(b)(5)", expert.ApplicableRule)
	assert.Contains(t, expert.CalculationBasis, "90 calendar days before trigger 2027-01-04 = 2026-10-06")

	// 20 business days back from the trial skips weekends, New Year's
	// Day and Christmas.
	pretrial := byTitle(t, out, "Joint pretrial statement filed")
	assert.Equal(t, "2026-12-03", pretrial.DeadlineDate)
	assert.Contains(t, pretrial.CalculationBasis, "20 business days before trigger")

	cal := calc.Calendar
	for _, d := range out {
		day, err := time.Parse(time.DateOnly, d.DeadlineDate)
		require.NoError(t, err)
		assert.True(t, cal.IsCourtDay(day, tmpl.Jurisdiction), "%s lands on %s", d.Title, d.DeadlineDate)
		assert.NotEmpty(t, d.CalculationBasis)
	}
}

func TestWeekendResultRollsForwardWithTrace(t *testing.T) {
	calc, _ := newTestCalculator(t)
	tmpl := config.RuleTemplate{
		ID: "t", Jurisdiction: "florida_state", CourtType: "civil", TriggerType: catalog.TriggerCustom,
		Deadlines: []config.DeadlineSpec{{
			Title: "Pretrial filing", OffsetDays: -15, Method: config.MethodCalendarDays, Priority: "standard",
		}},
	}
	// Trigger on a Sunday; 15 days back is Saturday 2026-01-31.
	out := calc.Calculate(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), tmpl, "electronic")
	require.Len(t, out, 1)
	assert.Equal(t, "2026-02-02", out[0].DeadlineDate)
	assert.Contains(t, out[0].CalculationBasis, "15 calendar days before trigger 2026-02-15 = 2026-01-31")
	assert.Contains(t, out[0].CalculationBasis, "rolled forward to court day 2026-02-02")
}

func TestServiceDaysAddedBeforeAdjustment(t *testing.T) {
	calc, cat := newTestCalculator(t)
	tmpl := template(t, cat, "fl-civil-complaint-response")
	served := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday

	electronic := byTitle(t, calc.Calculate(served, tmpl, "electronic"), "Answer or responsive motion due")
	mail := byTitle(t, calc.Calculate(served, tmpl, "mail"), "Answer or responsive motion due")

	// +20 lands on a Sunday; electronic rolls to Monday.
	assert.Equal(t, "2026-03-23", electronic.DeadlineDate)
	assert.NotContains(t, electronic.CalculationBasis, "service days")
	// Mail adds 5 calendar days first, landing on a Friday.
	assert.Equal(t, "2026-03-27", mail.DeadlineDate)
	assert.Contains(t, mail.CalculationBasis, "+5 service days (mail)")

	// Specs without the flag ignore the service method entirely.
	removal := byTitle(t, calc.Calculate(served, tmpl, "mail"), "Removal window closes (if removable)")
	assert.NotContains(t, removal.CalculationBasis, "service days")
}

func TestZeroOffsetIsSameDay(t *testing.T) {
	calc, _ := newTestCalculator(t)
	tmpl := config.RuleTemplate{
		ID: "t", Jurisdiction: "florida_state", CourtType: "civil", TriggerType: catalog.TriggerCustom,
		Deadlines: []config.DeadlineSpec{{
			Title: "Same-day filing", OffsetDays: 0, Method: config.MethodCalendarDays, Priority: "standard",
		}},
	}
	out := calc.Calculate(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), tmpl, "electronic")
	require.Len(t, out, 1)
	assert.Equal(t, "2026-06-01", out[0].DeadlineDate)
	assert.Contains(t, out[0].CalculationBasis, "same day as trigger 2026-06-01")
}

func TestEmptyTemplateYieldsEmptyChain(t *testing.T) {
	calc, _ := newTestCalculator(t)
	tmpl := config.RuleTemplate{ID: "t", Jurisdiction: "florida_state", CourtType: "civil", TriggerType: catalog.TriggerCustom}
	out := calc.Calculate(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), tmpl, "electronic")
	assert.Empty(t, out)
}

func TestCalculateIsDeterministic(t *testing.T) {
	calc, cat := newTestCalculator(t)
	tmpl := template(t, cat, "fl-civil-trial-order")
	trial := time.Date(2027, 1, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, calc.Calculate(trial, tmpl, "mail"), calc.Calculate(trial, tmpl, "mail"))
}
