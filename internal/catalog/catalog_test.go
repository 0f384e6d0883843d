package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docketline/internal/config"
)

func TestLoadDefaultCatalog(t *testing.T) {
	c := Load(config.Default(), nil)
	assert.Equal(t, 0, c.Skipped())
	require.NotEmpty(t, c.Templates())

	tmpl, ok := c.Template("fl-civil-trial-order")
	require.True(t, ok)
	assert.Equal(t, TriggerTrialDate, tmpl.TriggerType)
	assert.Len(t, tmpl.Deadlines, 13)
}

func TestLoadSkipsMalformedTemplates(t *testing.T) {
	cfg := config.Default()
	cfg.Templates = append(cfg.Templates,
		config.RuleTemplate{
			ID: "bad-method", Jurisdiction: "florida_state", CourtType: "civil", TriggerType: TriggerCustom,
			Deadlines: []config.DeadlineSpec{{Title: "X", OffsetDays: 5, Method: "lunar_days"}},
		},
		config.RuleTemplate{
			ID: "bad-jurisdiction", Jurisdiction: "atlantis", CourtType: "civil", TriggerType: TriggerCustom,
			Deadlines: []config.DeadlineSpec{{Title: "X", OffsetDays: 5, Method: config.MethodCalendarDays}},
		},
		config.RuleTemplate{
			ID: "untitled-deadline", Jurisdiction: "florida_state", CourtType: "civil", TriggerType: TriggerCustom,
			Deadlines: []config.DeadlineSpec{{OffsetDays: 5, Method: config.MethodCalendarDays}},
		},
	)

	c := Load(cfg, nil)
	assert.Equal(t, 3, c.Skipped())
	for _, id := range []string{"bad-method", "bad-jurisdiction", "untitled-deadline"} {
		_, ok := c.Template(id)
		assert.False(t, ok, "template %s should have been skipped", id)
	}
	// Valid templates still load.
	_, ok := c.Template("fl-civil-trial-order")
	assert.True(t, ok)
}

func TestLoadDefaultsEmptyPriority(t *testing.T) {
	cfg := config.Default()
	cfg.Templates = append(cfg.Templates, config.RuleTemplate{
		ID: "no-priority", Jurisdiction: "florida_state", CourtType: "civil", TriggerType: TriggerCustom,
		Deadlines: []config.DeadlineSpec{{Title: "X", OffsetDays: 5, Method: config.MethodCalendarDays}},
	})
	c := Load(cfg, nil)
	tmpl, ok := c.Template("no-priority")
	require.True(t, ok)
	assert.Equal(t, "standard", tmpl.Deadlines[0].Priority)
}

func TestApplicableFiltersAllThreeKeys(t *testing.T) {
	c := Load(config.Default(), nil)

	assert.Len(t, c.Applicable("florida_state", "civil", TriggerTrialDate), 1)
	assert.Empty(t, c.Applicable("federal", "civil", TriggerTrialDate))
	assert.Empty(t, c.Applicable("florida_state", "criminal", TriggerTrialDate))
	assert.Empty(t, c.Applicable("florida_state", "civil", TriggerCustom))
}

func TestMatchDocument(t *testing.T) {
	c := Load(config.Default(), nil)

	mr := c.MatchDocument("Uniform Trial Order", "florida_state", "civil")
	require.True(t, mr.Matches)
	assert.Equal(t, TriggerTrialDate, mr.TriggerType)
	assert.Equal(t, "uniform trial order", mr.MatchedPattern)
	assert.Equal(t, 13, mr.ExpectedDeadlines)

	// Case-insensitive substring over a longer label.
	mr = c.MatchDocument("NOTICE OF TRIAL - Smith v. Jones", "florida_state", "civil")
	require.True(t, mr.Matches)
	assert.Equal(t, TriggerTrialDate, mr.TriggerType)
}

func TestMatchDocumentFirstPatternWins(t *testing.T) {
	c := Load(config.Default(), nil)

	// Service patterns are listed before the catch-all complaint
	// patterns, so a served complaint classifies as service.
	mr := c.MatchDocument("Return of Service of the Complaint", "florida_state", "civil")
	require.True(t, mr.Matches)
	assert.Equal(t, TriggerComplaintServed, mr.TriggerType)

	// A bare complaint falls through to case_filed.
	mr = c.MatchDocument("Amended Complaint", "florida_state", "civil")
	require.True(t, mr.Matches)
	assert.Equal(t, TriggerCaseFiled, mr.TriggerType)
}

func TestMatchDocumentNoMatchIsZeroResult(t *testing.T) {
	c := Load(config.Default(), nil)

	mr := c.MatchDocument("Grocery List", "florida_state", "civil")
	assert.False(t, mr.Matches)
	assert.Empty(t, mr.TriggerType)
	assert.Zero(t, mr.ExpectedDeadlines)

	assert.False(t, c.MatchDocument("", "florida_state", "civil").Matches)
	assert.False(t, c.MatchDocument("   ", "florida_state", "civil").Matches)
}

func TestMatchDocumentCountsAcrossApplicableTemplates(t *testing.T) {
	cfg := config.Default()
	cfg.Templates = append(cfg.Templates, config.RuleTemplate{
		ID: "fl-civil-trial-order-extra", Name: "Extra trial deadlines",
		Jurisdiction: "florida_state", CourtType: "civil", TriggerType: TriggerTrialDate,
		Deadlines: []config.DeadlineSpec{{Title: "Extra", OffsetDays: -3, Method: config.MethodCalendarDays}},
	})
	c := Load(cfg, nil)
	mr := c.MatchDocument("Trial Order", "florida_state", "civil")
	require.True(t, mr.Matches)
	assert.Equal(t, 14, mr.ExpectedDeadlines)
}
