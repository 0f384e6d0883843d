// Package catalog holds the rule template registry and the trigger
// matcher. The catalog is populated once from config at startup and
// is never mutated by request handling.
package catalog

import (
	"fmt"

	"go.uber.org/zap"

	"docketline/internal/config"
)

// Known trigger types. The set is extended by adding variants here
// and patterns/templates in config.
const (
	TriggerCaseFiled       = "case_filed"
	TriggerComplaintServed = "complaint_served"
	TriggerTrialDate       = "trial_date"
	TriggerMotionFiled     = "motion_filed"
	TriggerDiscoveryServed = "discovery_served"
	TriggerCustom          = "custom"
)

// Catalog is the loaded, validated rule template registry plus the
// document classification pattern table.
type Catalog struct {
	templates []config.RuleTemplate
	patterns  []config.TriggerPatterns
	skipped   int
}

// Load validates and registers templates from cfg. A malformed
// template is logged and skipped; it never aborts the load of the
// remaining templates.
func Load(cfg *config.Config, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalog{patterns: cfg.Triggers}
	for _, t := range cfg.Templates {
		if err := validateTemplate(cfg, t); err != nil {
			c.skipped++
			log.Warn("skipping malformed rule template",
				zap.String("template_id", t.ID),
				zap.Error(err))
			continue
		}
		c.templates = append(c.templates, normalizeTemplate(t))
	}
	return c
}

func validateTemplate(cfg *config.Config, t config.RuleTemplate) error {
	if t.ID == "" {
		return fmt.Errorf("template has no id")
	}
	if t.TriggerType == "" {
		return fmt.Errorf("template has no trigger_type")
	}
	if t.Jurisdiction == "" || t.CourtType == "" {
		return fmt.Errorf("template must set jurisdiction and court_type")
	}
	if _, ok := cfg.Calendars[t.Jurisdiction]; !ok {
		return fmt.Errorf("template jurisdiction %s has no calendar", t.Jurisdiction)
	}
	for i, spec := range t.Deadlines {
		if spec.Title == "" {
			return fmt.Errorf("deadline %d has no title", i)
		}
		if !config.ValidMethod(spec.Method) {
			return fmt.Errorf("deadline %q has invalid method %q", spec.Title, spec.Method)
		}
		if spec.Priority != "" && !config.ValidPriority(spec.Priority) {
			return fmt.Errorf("deadline %q has invalid priority %q", spec.Title, spec.Priority)
		}
	}
	return nil
}

func normalizeTemplate(t config.RuleTemplate) config.RuleTemplate {
	for i := range t.Deadlines {
		if t.Deadlines[i].Priority == "" {
			t.Deadlines[i].Priority = "standard"
		}
	}
	return t
}

// Applicable returns all templates matching jurisdiction, court type
// and trigger type, preserving registration order. Ties are not
// broken; callers apply every returned template.
func (c *Catalog) Applicable(jurisdiction, courtType, triggerType string) []config.RuleTemplate {
	var out []config.RuleTemplate
	for _, t := range c.templates {
		if t.Jurisdiction == jurisdiction && t.CourtType == courtType && t.TriggerType == triggerType {
			out = append(out, t)
		}
	}
	return out
}

// Templates returns every registered template in registration order.
func (c *Catalog) Templates() []config.RuleTemplate {
	return c.templates
}

// Template returns the template with the given id.
func (c *Catalog) Template(id string) (config.RuleTemplate, bool) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, true
		}
	}
	return config.RuleTemplate{}, false
}

// Skipped reports how many templates were rejected at load time.
func (c *Catalog) Skipped() int {
	return c.skipped
}
