package server

import (
	"docketline/internal/domain"
)

type CreateCaseRequest struct {
	Title        string `json:"title"`
	CaseNumber   string `json:"case_number,omitempty"`
	Jurisdiction string `json:"jurisdiction"`
	CourtType    string `json:"court_type"`
}

type CaseResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CaseNumber   string `json:"case_number,omitempty"`
	Jurisdiction string `json:"jurisdiction"`
	CourtType    string `json:"court_type"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

func caseResponse(c domain.Case) CaseResponse {
	return CaseResponse{
		ID:           c.ID,
		Title:        c.Title,
		CaseNumber:   c.CaseNumber,
		Jurisdiction: c.Jurisdiction,
		CourtType:    c.CourtType,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
	}
}

func mapCases(items []domain.Case) []CaseResponse {
	res := make([]CaseResponse, 0, len(items))
	for _, c := range items {
		res = append(res, caseResponse(c))
	}
	return res
}

type DeadlineResponse struct {
	ID                   string  `json:"id"`
	CaseID               string  `json:"case_id"`
	Title                string  `json:"title"`
	Description          string  `json:"description,omitempty"`
	DeadlineDate         string  `json:"deadline_date"`
	DeadlineTime         *string `json:"deadline_time,omitempty"`
	DeadlineType         string  `json:"deadline_type,omitempty"`
	Priority             string  `json:"priority"`
	Status               string  `json:"status"`
	PartyRole            string  `json:"party_role,omitempty"`
	ActionRequired       string  `json:"action_required,omitempty"`
	ApplicableRule       string  `json:"applicable_rule,omitempty"`
	CalculationBasis     string  `json:"calculation_basis,omitempty"`
	IsCalculated         bool    `json:"is_calculated"`
	IsDependent          bool    `json:"is_dependent"`
	AutoRecalculate      bool    `json:"auto_recalculate"`
	OriginalDeadlineDate *string `json:"original_deadline_date,omitempty"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

func deadlineResponse(d domain.Deadline) DeadlineResponse {
	return DeadlineResponse{
		ID:                   d.ID,
		CaseID:               d.CaseID,
		Title:                d.Title,
		Description:          d.Description,
		DeadlineDate:         d.DeadlineDate,
		DeadlineTime:         d.DeadlineTime,
		DeadlineType:         d.DeadlineType,
		Priority:             d.Priority,
		Status:               d.Status,
		PartyRole:            d.PartyRole,
		ActionRequired:       d.ActionRequired,
		ApplicableRule:       d.ApplicableRule,
		CalculationBasis:     d.CalculationBasis,
		IsCalculated:         d.IsCalculated,
		IsDependent:          d.IsDependent,
		AutoRecalculate:      d.AutoRecalculate,
		OriginalDeadlineDate: d.OriginalDeadlineDate,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func mapDeadlines(items []domain.Deadline) []DeadlineResponse {
	res := make([]DeadlineResponse, 0, len(items))
	for _, d := range items {
		res = append(res, deadlineResponse(d))
	}
	return res
}

type CreateDeadlineRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Date           string `json:"date"`
	Time           string `json:"time,omitempty"`
	DeadlineType   string `json:"deadline_type,omitempty"`
	Priority       string `json:"priority,omitempty"`
	PartyRole      string `json:"party_role,omitempty"`
	ActionRequired string `json:"action_required,omitempty"`
	ApplicableRule string `json:"applicable_rule,omitempty"`
}

type UpdateDeadlineRequest struct {
	Status          string  `json:"status,omitempty" enum:",pending,completed,cancelled"`
	Date            *string `json:"date,omitempty"`
	Time            *string `json:"time,omitempty"`
	AutoRecalculate *bool   `json:"auto_recalculate,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

type FireTriggerRequest struct {
	DocumentType  string `json:"document_type,omitempty"`
	TriggerType   string `json:"trigger_type,omitempty"`
	TriggerDate   string `json:"trigger_date"`
	ServiceMethod string `json:"service_method,omitempty"`
}

type AddDependencyRequest struct {
	DependsOnID     string `json:"depends_on_id"`
	OffsetDays      int    `json:"offset_days"`
	OffsetDirection string `json:"offset_direction,omitempty" enum:",before,after"`
	AddServiceDays  bool   `json:"add_service_days,omitempty"`
	AutoRecalculate bool   `json:"auto_recalculate,omitempty"`
}

type DependencyResponse struct {
	ID               string  `json:"id"`
	DeadlineID       string  `json:"deadline_id"`
	DependsOnID      string  `json:"depends_on_id"`
	OffsetDays       int     `json:"offset_days"`
	OffsetDirection  string  `json:"offset_direction"`
	AddServiceDays   bool    `json:"add_service_days"`
	AutoRecalculate  bool    `json:"auto_recalculate"`
	LastRecalculated *string `json:"last_recalculated,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func dependencyResponse(d domain.DeadlineDependency) DependencyResponse {
	return DependencyResponse{
		ID:               d.ID,
		DeadlineID:       d.DeadlineID,
		DependsOnID:      d.DependsOnID,
		OffsetDays:       d.OffsetDays,
		OffsetDirection:  d.OffsetDirection,
		AddServiceDays:   d.AddServiceDays,
		AutoRecalculate:  d.AutoRecalculate,
		LastRecalculated: d.LastRecalculated,
		CreatedAt:        d.CreatedAt,
	}
}

func mapDependencies(items []domain.DeadlineDependency) []DependencyResponse {
	res := make([]DependencyResponse, 0, len(items))
	for _, d := range items {
		res = append(res, dependencyResponse(d))
	}
	return res
}

type HistoryResponse struct {
	ID         string `json:"id"`
	DeadlineID string `json:"deadline_id"`
	FieldName  string `json:"field_name"`
	OldValue   string `json:"old_value,omitempty"`
	NewValue   string `json:"new_value,omitempty"`
	Reason     string `json:"reason,omitempty"`
	ChangeType string `json:"change_type" enum:"manual,auto_recalc,ai_correction,system"`
	ActorID    string `json:"actor_id,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func mapHistory(items []domain.DeadlineHistory) []HistoryResponse {
	res := make([]HistoryResponse, 0, len(items))
	for _, h := range items {
		res = append(res, HistoryResponse{
			ID:         h.ID,
			DeadlineID: h.DeadlineID,
			FieldName:  h.FieldName,
			OldValue:   h.OldValue,
			NewValue:   h.NewValue,
			Reason:     h.Reason,
			ChangeType: h.ChangeType,
			ActorID:    h.ActorID,
			CreatedAt:  h.CreatedAt,
		})
	}
	return res
}

type ChainResponse struct {
	ID                string `json:"id"`
	CaseID            string `json:"case_id"`
	TriggerDeadlineID string `json:"trigger_deadline_id"`
	TriggerType       string `json:"trigger_type"`
	TemplateID        string `json:"template_id"`
	ServiceMethod     string `json:"service_method"`
	TriggerDate       string `json:"trigger_date"`
	DeadlineCount     int    `json:"deadline_count"`
	CreatedAt         string `json:"created_at"`
}

func mapChains(items []domain.DeadlineChain) []ChainResponse {
	res := make([]ChainResponse, 0, len(items))
	for _, c := range items {
		res = append(res, ChainResponse{
			ID:                c.ID,
			CaseID:            c.CaseID,
			TriggerDeadlineID: c.TriggerDeadlineID,
			TriggerType:       c.TriggerType,
			TemplateID:        c.TemplateID,
			ServiceMethod:     c.ServiceMethod,
			TriggerDate:       c.TriggerDate,
			DeadlineCount:     c.DeadlineCount,
			CreatedAt:         c.CreatedAt,
		})
	}
	return res
}

type EventResponse struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	CaseID     string `json:"case_id,omitempty"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id,omitempty"`
	Payload    string `json:"payload_json"`
}

func mapEvents(items []domain.Event) []EventResponse {
	res := make([]EventResponse, 0, len(items))
	for _, e := range items {
		res = append(res, EventResponse{
			ID:         e.ID,
			TS:         e.TS,
			Type:       e.Type,
			CaseID:     e.CaseID,
			EntityKind: e.EntityKind,
			EntityID:   e.EntityID,
			ActorID:    e.ActorID,
			Payload:    e.Payload,
		})
	}
	return res
}
