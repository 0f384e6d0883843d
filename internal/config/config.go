package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config models docketline.yml: the deadline rules engine's reference
// data (court calendars, service methods, trigger patterns, rule
// templates) plus engine policy knobs.
type Config struct {
	Engine struct {
		// OnParentDelete controls what happens to dependent deadlines
		// when their parent is deleted: "cascade" or "orphan".
		OnParentDelete string `yaml:"on_parent_delete" json:"on_parent_delete"`
	} `yaml:"engine" json:"engine"`
	// ServiceMethods maps a service method to the calendar days added
	// to deadlines flagged with add_service_days.
	ServiceMethods map[string]int            `yaml:"service_methods" json:"service_methods"`
	Calendars      map[string]CalendarConfig `yaml:"calendars" json:"calendars"`
	// Triggers is the ordered pattern table for document classification;
	// first matching pattern wins.
	Triggers  []TriggerPatterns `yaml:"triggers" json:"triggers"`
	Templates []RuleTemplate    `yaml:"templates" json:"templates"`
}

// CalendarConfig is a per-jurisdiction holiday table. Extends names
// another calendar whose holidays are unioned in (state = federal +
// state-specific additions).
type CalendarConfig struct {
	Extends  string           `yaml:"extends,omitempty" json:"extends,omitempty"`
	Holidays map[int][]string `yaml:"holidays" json:"holidays"`
}

type TriggerPatterns struct {
	Type     string   `yaml:"type" json:"type"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// RuleTemplate is a named bundle of dependent deadline specs keyed by
// trigger type, jurisdiction and court type. Templates are read-mostly
// reference data loaded at startup or on catalog refresh.
type RuleTemplate struct {
	ID           string         `yaml:"id" json:"id"`
	Name         string         `yaml:"name" json:"name"`
	Jurisdiction string         `yaml:"jurisdiction" json:"jurisdiction"`
	CourtType    string         `yaml:"court_type" json:"court_type"`
	TriggerType  string         `yaml:"trigger_type" json:"trigger_type"`
	Deadlines    []DeadlineSpec `yaml:"deadlines" json:"deadlines"`
}

// DeadlineSpec is one dependent deadline within a template. A negative
// offset means before the trigger date, positive after.
type DeadlineSpec struct {
	Title          string `yaml:"title" json:"title"`
	Description    string `yaml:"description,omitempty" json:"description,omitempty"`
	OffsetDays     int    `yaml:"offset_days" json:"offset_days"`
	Method         string `yaml:"method" json:"method"`
	Priority       string `yaml:"priority" json:"priority"`
	PartyRole      string `yaml:"party,omitempty" json:"party,omitempty"`
	ActionRequired string `yaml:"action,omitempty" json:"action,omitempty"`
	AddServiceDays bool   `yaml:"add_service_days,omitempty" json:"add_service_days,omitempty"`
	Citation       string `yaml:"citation,omitempty" json:"citation,omitempty"`
	DeadlineType   string `yaml:"deadline_type,omitempty" json:"deadline_type,omitempty"`
}

const (
	MethodCalendarDays = "calendar_days"
	MethodBusinessDays = "business_days"
	MethodCourtDays    = "court_days"

	DeleteCascade = "cascade"
	DeleteOrphan  = "orphan"
)

// Priorities in ascending order of severity.
var Priorities = []string{"informational", "standard", "important", "critical", "fatal"}

func ValidPriority(p string) bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

func ValidMethod(m string) bool {
	return m == MethodCalendarDays || m == MethodBusinessDays || m == MethodCourtDays
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; import with dl rules import --file <path>", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate checks the structural invariants of the config. Per-spec
// template validation is deliberately left to the catalog loader,
// which skips malformed templates instead of failing the whole load.
func (c *Config) Validate() error {
	switch c.Engine.OnParentDelete {
	case "", DeleteCascade, DeleteOrphan:
	default:
		return fmt.Errorf("engine.on_parent_delete must be %q or %q", DeleteCascade, DeleteOrphan)
	}
	if len(c.ServiceMethods) == 0 {
		return fmt.Errorf("config.service_methods is required")
	}
	for name, days := range c.ServiceMethods {
		if name == "" {
			return fmt.Errorf("config.service_methods contains empty method name")
		}
		if days < 0 {
			return fmt.Errorf("service method %s has negative day allotment", name)
		}
	}
	if len(c.Calendars) == 0 {
		return fmt.Errorf("config.calendars is required")
	}
	for name, cal := range c.Calendars {
		if name == "" {
			return fmt.Errorf("config.calendars contains empty jurisdiction name")
		}
		if cal.Extends != "" {
			if _, ok := c.Calendars[cal.Extends]; !ok {
				return fmt.Errorf("calendar %s extends unknown calendar %s", name, cal.Extends)
			}
		}
		for year, dates := range cal.Holidays {
			for _, d := range dates {
				t, err := time.Parse(time.DateOnly, d)
				if err != nil {
					return fmt.Errorf("calendar %s holiday %q: %w", name, d, err)
				}
				if t.Year() != year {
					return fmt.Errorf("calendar %s holiday %s listed under year %d", name, d, year)
				}
			}
		}
	}
	if err := c.validateCalendarCycles(); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, tp := range c.Triggers {
		if tp.Type == "" {
			return fmt.Errorf("config.triggers contains entry with empty type")
		}
		if seen[tp.Type] {
			return fmt.Errorf("trigger type %s listed twice", tp.Type)
		}
		seen[tp.Type] = true
		if len(tp.Patterns) == 0 {
			return fmt.Errorf("trigger type %s has no patterns", tp.Type)
		}
		for _, p := range tp.Patterns {
			if p == "" {
				return fmt.Errorf("trigger type %s has empty pattern", tp.Type)
			}
		}
	}
	ids := map[string]bool{}
	for _, t := range c.Templates {
		if t.ID == "" {
			return fmt.Errorf("config.templates contains template with empty id")
		}
		if ids[t.ID] {
			return fmt.Errorf("template id %s listed twice", t.ID)
		}
		ids[t.ID] = true
	}
	return nil
}

func (c *Config) validateCalendarCycles() error {
	for name := range c.Calendars {
		visited := map[string]bool{}
		cur := name
		for cur != "" {
			if visited[cur] {
				return fmt.Errorf("calendar %s is part of an extends cycle", name)
			}
			visited[cur] = true
			cur = c.Calendars[cur].Extends
		}
	}
	return nil
}

// ServiceDays returns the extra calendar days for a service method.
// Unknown methods add nothing.
func (c *Config) ServiceDays(method string) int {
	return c.ServiceMethods[method]
}

// DeletePolicy returns the effective on-parent-delete policy.
func (c *Config) DeletePolicy() string {
	if c.Engine.OnParentDelete == "" {
		return DeleteOrphan
	}
	return c.Engine.OnParentDelete
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "docketline.yml")
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the built-in rule set (federal + Florida state).
func Default() *Config {
	var cfg Config
	if err := yaml.Unmarshal([]byte(defaultTemplate), &cfg); err != nil {
		panic(fmt.Sprintf("invalid embedded default config: %v", err))
	}
	return &cfg
}

// GenerateDefault returns the default config YAML text.
func GenerateDefault() string {
	return defaultTemplate
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}
