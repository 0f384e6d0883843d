package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DeleteOrphan, cfg.DeletePolicy())
	assert.Equal(t, 5, cfg.ServiceDays("mail"))
	assert.Equal(t, 0, cfg.ServiceDays("electronic"))
	assert.Equal(t, 0, cfg.ServiceDays("carrier_pigeon"))
}

func TestValidateRejectsBadDeletePolicy(t *testing.T) {
	cfg := Default()
	cfg.Engine.OnParentDelete = "explode"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsHolidayYearMismatch(t *testing.T) {
	cfg := Default()
	cal := cfg.Calendars["federal"]
	cal.Holidays[2026] = append(cal.Holidays[2026], "2027-05-01")
	cfg.Calendars["federal"] = cal
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsExtendsCycle(t *testing.T) {
	cfg := Default()
	cfg.Calendars["a"] = CalendarConfig{Extends: "b"}
	cfg.Calendars["b"] = CalendarConfig{Extends: "a"}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicateTriggerType(t *testing.T) {
	cfg := Default()
	cfg.Triggers = append(cfg.Triggers, TriggerPatterns{Type: "trial_date", Patterns: []string{"again"}})
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicateTemplateID(t *testing.T) {
	cfg := Default()
	cfg.Templates = append(cfg.Templates, RuleTemplate{ID: cfg.Templates[0].ID})
	assert.Error(t, cfg.Validate())
}

func TestFromYAMLRejectsNegativeServiceDays(t *testing.T) {
	_, err := FromYAML([]byte(`
service_methods:
  mail: -1
calendars:
  federal:
    holidays: {}
`))
	assert.Error(t, err)
}

func TestFromYAMLRoundTripsDefault(t *testing.T) {
	cfg, err := FromYAML([]byte(GenerateDefault()))
	require.NoError(t, err)
	assert.Len(t, cfg.Templates, 6)
	assert.Contains(t, cfg.Calendars, "florida_state")
	assert.Equal(t, "federal", cfg.Calendars["florida_state"].Extends)
}
