package domain

type Case struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CaseNumber   string `json:"case_number,omitempty"`
	Jurisdiction string `json:"jurisdiction"`
	CourtType    string `json:"court_type"`
	Status       string `json:"status" enum:"open,closed"`
	CreatedAt    string `json:"created_at" format:"date-time"`
}

type Deadline struct {
	ID                   string  `json:"id"`
	CaseID               string  `json:"case_id"`
	Title                string  `json:"title"`
	Description          string  `json:"description,omitempty"`
	DeadlineDate         string  `json:"deadline_date" format:"date"`
	DeadlineTime         *string `json:"deadline_time,omitempty"`
	DeadlineType         string  `json:"deadline_type,omitempty"`
	Priority             string  `json:"priority" enum:"informational,standard,important,critical,fatal"`
	Status               string  `json:"status" enum:"pending,completed,cancelled"`
	PartyRole            string  `json:"party_role,omitempty"`
	ActionRequired       string  `json:"action_required,omitempty"`
	ApplicableRule       string  `json:"applicable_rule,omitempty"`
	CalculationBasis     string  `json:"calculation_basis,omitempty"`
	IsCalculated         bool    `json:"is_calculated"`
	IsDependent          bool    `json:"is_dependent"`
	AutoRecalculate      bool    `json:"auto_recalculate"`
	OriginalDeadlineDate *string `json:"original_deadline_date,omitempty" format:"date"`
	CreatedAt            string  `json:"created_at" format:"date-time"`
	UpdatedAt            string  `json:"updated_at" format:"date-time"`
}

type DeadlineDependency struct {
	ID               string  `json:"id"`
	DeadlineID       string  `json:"deadline_id"`
	DependsOnID      string  `json:"depends_on_deadline_id"`
	OffsetDays       int     `json:"offset_days"`
	OffsetDirection  string  `json:"offset_direction" enum:"before,after"`
	AddServiceDays   bool    `json:"add_service_days"`
	AutoRecalculate  bool    `json:"auto_recalculate"`
	LastRecalculated *string `json:"last_recalculated,omitempty" format:"date-time"`
	CreatedAt        string  `json:"created_at" format:"date-time"`
}

type DeadlineChain struct {
	ID                string `json:"id"`
	CaseID            string `json:"case_id"`
	TriggerDeadlineID string `json:"trigger_deadline_id"`
	TriggerType       string `json:"trigger_type"`
	TemplateID        string `json:"template_id"`
	ServiceMethod     string `json:"service_method"`
	TriggerDate       string `json:"trigger_date" format:"date"`
	DeadlineCount     int    `json:"deadline_count"`
	CreatedAt         string `json:"created_at" format:"date-time"`
}

type DeadlineHistory struct {
	ID         string `json:"id"`
	DeadlineID string `json:"deadline_id"`
	FieldName  string `json:"field_name"`
	OldValue   string `json:"old_value,omitempty"`
	NewValue   string `json:"new_value,omitempty"`
	Reason     string `json:"reason,omitempty"`
	ChangeType string `json:"change_type" enum:"manual,auto_recalc,ai_correction,system"`
	ActorID    string `json:"actor_id"`
	CreatedAt  string `json:"created_at" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	CaseID     string `json:"case_id,omitempty"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}
