package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docketline/internal/calendar"
	"docketline/internal/catalog"
	"docketline/internal/chain"
	"docketline/internal/config"
	"docketline/internal/domain"
	"docketline/internal/events"
	"docketline/internal/repo"
)

type Engine struct {
	DB       *sql.DB
	Repo     repo.Repo
	Events   events.Writer
	Config   *config.Config
	Catalog  *catalog.Catalog
	Calendar *calendar.Calendar
	Calc     chain.Calculator
	Log      *zap.Logger
	Now      func() time.Time
}

// New wires an Engine from an open database and a validated config.
// The catalog and calendar are built once here; request handling never
// mutates them.
func New(db *sql.DB, cfg *config.Config, log *zap.Logger) (Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cal, err := calendar.New(cfg.Calendars, log)
	if err != nil {
		return Engine{}, err
	}
	cat := catalog.Load(cfg, log)
	return Engine{
		DB:       db,
		Repo:     repo.Repo{DB: db},
		Events:   events.Writer{DB: db},
		Config:   cfg,
		Catalog:  cat,
		Calendar: cal,
		Calc:     chain.New(cal, cfg),
		Log:      log,
		Now:      time.Now,
	}, nil
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// CaseCreateOptions are parameters for creating a case.
type CaseCreateOptions struct {
	ID           string
	Title        string
	CaseNumber   string
	Jurisdiction string
	CourtType    string
	ActorID      string
}

func (e Engine) InitCase(ctx context.Context, opts CaseCreateOptions) (domain.Case, error) {
	if opts.Title == "" {
		return domain.Case{}, errors.New("title is required")
	}
	if opts.Jurisdiction == "" || opts.CourtType == "" {
		return domain.Case{}, errors.New("jurisdiction and court-type are required")
	}
	if _, ok := e.Config.Calendars[opts.Jurisdiction]; !ok {
		return domain.Case{}, fmt.Errorf("no court calendar configured for jurisdiction %s", opts.Jurisdiction)
	}
	now := e.now().UTC().Format(time.RFC3339)
	id := opts.ID
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(opts.Title+"|"+now)).String()
	}
	c := domain.Case{
		ID:           id,
		Title:        opts.Title,
		CaseNumber:   opts.CaseNumber,
		Jurisdiction: opts.Jurisdiction,
		CourtType:    opts.CourtType,
		Status:       "open",
		CreatedAt:    now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Case{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertCaseTx(ctx, tx, c); err != nil {
		return domain.Case{}, fmt.Errorf("insert case: %w", err)
	}
	if err := e.Events.Append(ctx, tx, "case.created", c.ID, "case", c.ID, opts.ActorID, events.EventPayload{"jurisdiction": c.Jurisdiction, "court_type": c.CourtType}); err != nil {
		return domain.Case{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Case{}, err
	}
	return c, nil
}

// TriggerOptions describe an observed procedural event. Either
// TriggerType is set explicitly or DocumentType is classified through
// the pattern table.
type TriggerOptions struct {
	CaseID        string
	DocumentType  string
	TriggerType   string
	TriggerDate   string
	ServiceMethod string
	ActorID       string
}

// TriggerResult is the outcome of firing a trigger. A trigger that
// matches nothing is a soft result with a reason, not an error, so
// callers can degrade gracefully to manual entry.
type TriggerResult struct {
	Matched      bool                        `json:"matched"`
	Reason       string                      `json:"reason,omitempty"`
	TriggerType  string                      `json:"trigger_type,omitempty"`
	Match        *catalog.MatchResult        `json:"match,omitempty"`
	Trigger      *domain.Deadline            `json:"trigger_deadline,omitempty"`
	Chains       []domain.DeadlineChain      `json:"chains,omitempty"`
	Deadlines    []domain.Deadline           `json:"deadlines,omitempty"`
	Dependencies []domain.DeadlineDependency `json:"dependencies,omitempty"`
}

var triggerTitles = map[string]string{
	catalog.TriggerCaseFiled:       "Case filed",
	catalog.TriggerComplaintServed: "Complaint served",
	catalog.TriggerTrialDate:       "Trial",
	catalog.TriggerMotionFiled:     "Motion filed",
	catalog.TriggerDiscoveryServed: "Discovery served",
}

// FireTrigger matches the event, expands every applicable template
// into dated deadlines and persists the trigger deadline, children,
// dependency edges and chain records in one transaction.
func (e Engine) FireTrigger(ctx context.Context, opts TriggerOptions) (TriggerResult, error) {
	if e.Config == nil {
		return TriggerResult{}, errors.New("config not loaded")
	}
	if opts.CaseID == "" {
		return TriggerResult{}, errors.New("case is required")
	}
	cs, err := e.Repo.GetCase(ctx, opts.CaseID)
	if err != nil {
		return TriggerResult{}, err
	}
	triggerDate, err := time.Parse(time.DateOnly, opts.TriggerDate)
	if err != nil {
		return TriggerResult{}, fmt.Errorf("trigger-date: %w", err)
	}
	if opts.ServiceMethod == "" {
		opts.ServiceMethod = "electronic"
	}

	result := TriggerResult{TriggerType: opts.TriggerType}
	if result.TriggerType == "" {
		if opts.DocumentType == "" {
			return TriggerResult{}, errors.New("trigger-type or document-type is required")
		}
		mr := e.Catalog.MatchDocument(opts.DocumentType, cs.Jurisdiction, cs.CourtType)
		result.Match = &mr
		if !mr.Matches {
			result.Reason = fmt.Sprintf("no trigger pattern matched document type %q", opts.DocumentType)
			return result, nil
		}
		result.TriggerType = mr.TriggerType
	}

	templates := e.Catalog.Applicable(cs.Jurisdiction, cs.CourtType, result.TriggerType)
	if len(templates) == 0 {
		result.Reason = fmt.Sprintf("no rule templates for trigger %s in %s/%s", result.TriggerType, cs.Jurisdiction, cs.CourtType)
		return result, nil
	}

	now := e.now().UTC().Format(time.RFC3339)
	rootTitle := triggerTitles[result.TriggerType]
	if rootTitle == "" {
		rootTitle = "Trigger event: " + result.TriggerType
	}
	root := domain.Deadline{
		ID:           uuid.New().String(),
		CaseID:       cs.ID,
		Title:        rootTitle,
		DeadlineDate: triggerDate.Format(time.DateOnly),
		DeadlineType: "trigger",
		Priority:     "informational",
		Status:       "pending",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return TriggerResult{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.InsertDeadlineTx(ctx, tx, root); err != nil {
		return TriggerResult{}, fmt.Errorf("insert trigger deadline: %w", err)
	}
	result.Trigger = &root

	for _, tmpl := range templates {
		computed := e.Calc.Calculate(triggerDate, tmpl, opts.ServiceMethod)
		for _, cd := range computed {
			d := domain.Deadline{
				ID:               uuid.New().String(),
				CaseID:           cs.ID,
				Title:            cd.Title,
				Description:      cd.Description,
				DeadlineDate:     cd.DeadlineDate,
				DeadlineType:     cd.DeadlineType,
				Priority:         cd.Priority,
				Status:           "pending",
				PartyRole:        cd.PartyRole,
				ActionRequired:   cd.ActionRequired,
				ApplicableRule:   cd.ApplicableRule,
				CalculationBasis: cd.CalculationBasis,
				IsCalculated:     true,
				IsDependent:      true,
				AutoRecalculate:  true,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := e.Repo.InsertDeadlineTx(ctx, tx, d); err != nil {
				return TriggerResult{}, fmt.Errorf("insert deadline %q: %w", d.Title, err)
			}
			dep := domain.DeadlineDependency{
				ID:              uuid.New().String(),
				DeadlineID:      d.ID,
				DependsOnID:     root.ID,
				OffsetDays:      cd.OffsetDays,
				OffsetDirection: directionFor(cd.OffsetDays),
				AddServiceDays:  cd.AddServiceDays,
				AutoRecalculate: true,
				CreatedAt:       now,
			}
			if err := e.Repo.InsertDependencyTx(ctx, tx, dep); err != nil {
				return TriggerResult{}, fmt.Errorf("insert dependency for %q: %w", d.Title, err)
			}
			result.Deadlines = append(result.Deadlines, d)
			result.Dependencies = append(result.Dependencies, dep)
		}
		ch := domain.DeadlineChain{
			ID:                uuid.New().String(),
			CaseID:            cs.ID,
			TriggerDeadlineID: root.ID,
			TriggerType:       result.TriggerType,
			TemplateID:        tmpl.ID,
			ServiceMethod:     opts.ServiceMethod,
			TriggerDate:       root.DeadlineDate,
			DeadlineCount:     len(computed),
			CreatedAt:         now,
		}
		if err := e.Repo.InsertChainTx(ctx, tx, ch); err != nil {
			return TriggerResult{}, fmt.Errorf("insert chain: %w", err)
		}
		if err := e.Events.Append(ctx, tx, "chain.created", cs.ID, "chain", ch.ID, opts.ActorID, events.EventPayload{
			"template_id":    tmpl.ID,
			"trigger_type":   result.TriggerType,
			"deadline_count": len(computed),
		}); err != nil {
			return TriggerResult{}, err
		}
		result.Chains = append(result.Chains, ch)
	}
	if err := e.Events.Append(ctx, tx, "trigger.fired", cs.ID, "deadline", root.ID, opts.ActorID, events.EventPayload{
		"trigger_type":   result.TriggerType,
		"trigger_date":   root.DeadlineDate,
		"service_method": opts.ServiceMethod,
		"chains":         len(result.Chains),
		"deadlines":      len(result.Deadlines),
	}); err != nil {
		return TriggerResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return TriggerResult{}, err
	}
	result.Matched = true
	return result, nil
}

func directionFor(offsetDays int) string {
	if offsetDays < 0 {
		return "before"
	}
	return "after"
}

// DeadlineUpdateOptions encapsulates allowed deadline edits.
type DeadlineUpdateOptions struct {
	ID            string
	Status        string
	SetDate       *string
	SetTime       *string
	SetAutoRecalc *bool
	Reason        string
	ActorID       string
}

// UpdateDeadline applies status and date edits. A date edit writes a
// manual history row, preserves the original date for audit, and then
// cascades to every pending dependent with auto-recalculation enabled,
// all inside one transaction: partial application is never left
// behind.
func (e Engine) UpdateDeadline(ctx context.Context, opts DeadlineUpdateOptions) (domain.Deadline, error) {
	if e.Config == nil {
		return domain.Deadline{}, errors.New("config not loaded")
	}
	d, err := e.Repo.GetDeadline(ctx, opts.ID)
	if err != nil {
		return d, err
	}
	cs, err := e.Repo.GetCase(ctx, d.CaseID)
	if err != nil {
		return d, err
	}
	now := e.now().UTC().Format(time.RFC3339)

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return d, err
	}
	defer tx.Rollback()

	if opts.Status != "" && opts.Status != d.Status {
		if err := ensureDeadlineTransition(d.Status, opts.Status); err != nil {
			return d, err
		}
		if err := e.recordHistoryTx(ctx, tx, d.ID, "status", d.Status, opts.Status, opts.Reason, "manual", opts.ActorID); err != nil {
			return d, err
		}
		d.Status = opts.Status
	}
	if opts.SetTime != nil {
		d.DeadlineTime = opts.SetTime
	}
	if opts.SetAutoRecalc != nil && *opts.SetAutoRecalc != d.AutoRecalculate {
		if err := e.recordHistoryTx(ctx, tx, d.ID, "auto_recalculate",
			fmt.Sprintf("%t", d.AutoRecalculate), fmt.Sprintf("%t", *opts.SetAutoRecalc), opts.Reason, "manual", opts.ActorID); err != nil {
			return d, err
		}
		d.AutoRecalculate = *opts.SetAutoRecalc
	}

	dateChanged := false
	oldDate := d.DeadlineDate
	if opts.SetDate != nil && *opts.SetDate != d.DeadlineDate {
		newDate, err := time.Parse(time.DateOnly, *opts.SetDate)
		if err != nil {
			return d, fmt.Errorf("date: %w", err)
		}
		if d.Status != "pending" {
			return d, fmt.Errorf("cannot move a %s deadline", d.Status)
		}
		if d.OriginalDeadlineDate == nil {
			orig := d.DeadlineDate
			d.OriginalDeadlineDate = &orig
		}
		if err := e.recordHistoryTx(ctx, tx, d.ID, "deadline_date", d.DeadlineDate, newDate.Format(time.DateOnly), opts.Reason, "manual", opts.ActorID); err != nil {
			return d, err
		}
		d.DeadlineDate = newDate.Format(time.DateOnly)
		dateChanged = true
	}

	d.UpdatedAt = now
	if err := e.Repo.UpdateDeadlineTx(ctx, tx, d); err != nil {
		return d, err
	}

	if dateChanged {
		if err := e.recalcDependentsTx(ctx, tx, cs, d.ID, oldDate, d.DeadlineDate, opts.ActorID, map[string]bool{d.ID: true}); err != nil {
			return d, err
		}
	}
	if err := e.Events.Append(ctx, tx, "deadline.updated", d.CaseID, "deadline", d.ID, opts.ActorID, events.EventPayload{
		"status":       d.Status,
		"date":         d.DeadlineDate,
		"date_changed": dateChanged,
	}); err != nil {
		return d, err
	}
	if err := tx.Commit(); err != nil {
		return d, err
	}
	return d, nil
}

// recalcDependentsTx shifts pending auto-recalculating dependents of
// parentID by the parent's date delta, rolled forward to a court day,
// and recurses. Each moved deadline gets exactly one auto_recalc
// history row; unchanged deadlines get none (idempotence guard).
func (e Engine) recalcDependentsTx(ctx context.Context, tx *sql.Tx, cs domain.Case, parentID, oldDate, newDate, actorID string, seen map[string]bool) error {
	oldT, err := time.Parse(time.DateOnly, oldDate)
	if err != nil {
		return fmt.Errorf("parent date: %w", err)
	}
	newT, err := time.Parse(time.DateOnly, newDate)
	if err != nil {
		return fmt.Errorf("parent date: %w", err)
	}
	deltaDays := int(newT.Sub(oldT).Hours() / 24)
	if deltaDays == 0 {
		return nil
	}
	edges, err := e.Repo.ListDependentsTx(ctx, tx, parentID)
	if err != nil {
		return err
	}
	now := e.now().UTC().Format(time.RFC3339)
	for _, edge := range edges {
		if seen[edge.DeadlineID] {
			// defensive: generated chains are acyclic, but manual edges are
			// validated separately and we never loop regardless
			continue
		}
		if !edge.AutoRecalculate {
			continue
		}
		child, err := e.Repo.GetDeadlineTx(ctx, tx, edge.DeadlineID)
		if err != nil {
			return err
		}
		if child.Status != "pending" || !child.AutoRecalculate || !child.IsDependent {
			continue
		}
		childT, err := time.Parse(time.DateOnly, child.DeadlineDate)
		if err != nil {
			return fmt.Errorf("deadline %s date: %w", child.ID, err)
		}
		shifted := e.Calendar.AdjustForHolidaysAndWeekends(childT.AddDate(0, 0, deltaDays), cs.Jurisdiction)
		newChildDate := shifted.Format(time.DateOnly)
		if newChildDate == child.DeadlineDate {
			continue
		}
		if child.OriginalDeadlineDate == nil {
			orig := child.DeadlineDate
			child.OriginalDeadlineDate = &orig
		}
		if err := e.recordHistoryTx(ctx, tx, child.ID, "deadline_date", child.DeadlineDate, newChildDate,
			fmt.Sprintf("parent deadline moved %s -> %s", oldDate, newDate), "auto_recalc", actorID); err != nil {
			return err
		}
		oldChildDate := child.DeadlineDate
		child.DeadlineDate = newChildDate
		child.UpdatedAt = now
		if err := e.Repo.UpdateDeadlineTx(ctx, tx, child); err != nil {
			return err
		}
		if err := e.Repo.TouchDependencyRecalcTx(ctx, tx, edge.ID, now); err != nil {
			return err
		}
		if err := e.Events.Append(ctx, tx, "deadline.recalculated", child.CaseID, "deadline", child.ID, actorID, events.EventPayload{
			"from": oldChildDate,
			"to":   newChildDate,
		}); err != nil {
			return err
		}
		seen[child.ID] = true
		if err := e.recalcDependentsTx(ctx, tx, cs, child.ID, oldChildDate, newChildDate, actorID, seen); err != nil {
			return err
		}
	}
	return nil
}

func ensureDeadlineTransition(oldStatus, newStatus string) error {
	if oldStatus == "pending" && (newStatus == "completed" || newStatus == "cancelled") {
		return nil
	}
	return fmt.Errorf("invalid deadline status transition %s -> %s", oldStatus, newStatus)
}

// DeadlineCreateOptions are parameters for a manually entered deadline.
type DeadlineCreateOptions struct {
	CaseID         string
	Title          string
	Description    string
	Date           string
	Time           string
	DeadlineType   string
	Priority       string
	PartyRole      string
	ActionRequired string
	ApplicableRule string
	ActorID        string
}

func (e Engine) AddManualDeadline(ctx context.Context, opts DeadlineCreateOptions) (domain.Deadline, error) {
	if opts.Title == "" {
		return domain.Deadline{}, errors.New("title is required")
	}
	if _, err := time.Parse(time.DateOnly, opts.Date); err != nil {
		return domain.Deadline{}, fmt.Errorf("date: %w", err)
	}
	if opts.Priority == "" {
		opts.Priority = "standard"
	}
	if !config.ValidPriority(opts.Priority) {
		return domain.Deadline{}, fmt.Errorf("invalid priority %q", opts.Priority)
	}
	if _, err := e.Repo.GetCase(ctx, opts.CaseID); err != nil {
		return domain.Deadline{}, err
	}
	now := e.now().UTC().Format(time.RFC3339)
	d := domain.Deadline{
		ID:             uuid.New().String(),
		CaseID:         opts.CaseID,
		Title:          opts.Title,
		Description:    opts.Description,
		DeadlineDate:   opts.Date,
		DeadlineType:   opts.DeadlineType,
		Priority:       opts.Priority,
		Status:         "pending",
		PartyRole:      opts.PartyRole,
		ActionRequired: opts.ActionRequired,
		ApplicableRule: opts.ApplicableRule,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if opts.Time != "" {
		d.DeadlineTime = &opts.Time
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return d, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertDeadlineTx(ctx, tx, d); err != nil {
		return d, err
	}
	if err := e.Events.Append(ctx, tx, "deadline.created", d.CaseID, "deadline", d.ID, opts.ActorID, events.EventPayload{
		"title": d.Title, "date": d.DeadlineDate, "manual": true,
	}); err != nil {
		return d, err
	}
	if err := tx.Commit(); err != nil {
		return d, err
	}
	return d, nil
}

// DependencyOptions are parameters for wiring a manual dependency edge.
type DependencyOptions struct {
	DeadlineID      string
	DependsOnID     string
	OffsetDays      int
	OffsetDirection string
	AddServiceDays  bool
	AutoRecalculate bool
	ActorID         string
}

// AddDependency links an existing deadline to a parent. The edge is
// rejected when the offset sign contradicts the direction or when it
// would close a cycle in the dependency graph.
func (e Engine) AddDependency(ctx context.Context, opts DependencyOptions) (domain.DeadlineDependency, error) {
	if opts.DeadlineID == opts.DependsOnID {
		return domain.DeadlineDependency{}, errors.New("deadline cannot depend on itself")
	}
	child, err := e.Repo.GetDeadline(ctx, opts.DeadlineID)
	if err != nil {
		return domain.DeadlineDependency{}, err
	}
	parent, err := e.Repo.GetDeadline(ctx, opts.DependsOnID)
	if err != nil {
		return domain.DeadlineDependency{}, err
	}
	if child.CaseID != parent.CaseID {
		return domain.DeadlineDependency{}, errors.New("dependency spans different cases")
	}
	direction := opts.OffsetDirection
	if direction == "" {
		direction = directionFor(opts.OffsetDays)
	}
	if direction != "before" && direction != "after" {
		return domain.DeadlineDependency{}, fmt.Errorf("invalid offset direction %q", direction)
	}
	if (opts.OffsetDays < 0 && direction == "after") || (opts.OffsetDays > 0 && direction == "before") {
		return domain.DeadlineDependency{}, fmt.Errorf("offset %d contradicts direction %s", opts.OffsetDays, direction)
	}
	if err := e.ensureNoCycle(ctx, opts.DependsOnID, opts.DeadlineID); err != nil {
		return domain.DeadlineDependency{}, err
	}
	now := e.now().UTC().Format(time.RFC3339)
	dep := domain.DeadlineDependency{
		ID:              uuid.New().String(),
		DeadlineID:      child.ID,
		DependsOnID:     parent.ID,
		OffsetDays:      opts.OffsetDays,
		OffsetDirection: direction,
		AddServiceDays:  opts.AddServiceDays,
		AutoRecalculate: opts.AutoRecalculate,
		CreatedAt:       now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return dep, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertDependencyTx(ctx, tx, dep); err != nil {
		return dep, err
	}
	if !child.IsDependent || child.AutoRecalculate != opts.AutoRecalculate {
		child.IsDependent = true
		child.AutoRecalculate = opts.AutoRecalculate
		child.UpdatedAt = now
		if err := e.Repo.UpdateDeadlineTx(ctx, tx, child); err != nil {
			return dep, err
		}
	}
	if err := e.Events.Append(ctx, tx, "dependency.added", child.CaseID, "dependency", dep.ID, opts.ActorID, events.EventPayload{
		"deadline_id":   child.ID,
		"depends_on_id": parent.ID,
		"offset_days":   opts.OffsetDays,
	}); err != nil {
		return dep, err
	}
	if err := tx.Commit(); err != nil {
		return dep, err
	}
	return dep, nil
}

// ensureNoCycle rejects an edge child->parent when child is already an
// ancestor of parent.
func (e Engine) ensureNoCycle(ctx context.Context, parentID, childID string) error {
	visited := map[string]bool{}
	queue := []string{parentID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == childID {
			return errors.New("dependency cycle detected")
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		parents, err := e.Repo.ListParents(ctx, cur)
		if err != nil {
			return err
		}
		queue = append(queue, parents...)
	}
	return nil
}

// DeleteDeadline removes a deadline. Dependents are handled per the
// configured policy: cascade deletes wholly chain-defined dependents,
// orphan detaches them with recalculation disabled so the records (and
// their audit history) survive.
func (e Engine) DeleteDeadline(ctx context.Context, id, actorID string) error {
	d, err := e.Repo.GetDeadline(ctx, id)
	if err != nil {
		return err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.deleteDeadlineTx(ctx, tx, d, actorID); err != nil {
		return err
	}
	return tx.Commit()
}

func (e Engine) deleteDeadlineTx(ctx context.Context, tx *sql.Tx, d domain.Deadline, actorID string) error {
	edges, err := e.Repo.ListDependentsTx(ctx, tx, d.ID)
	if err != nil {
		return err
	}
	now := e.now().UTC().Format(time.RFC3339)
	policy := e.Config.DeletePolicy()
	for _, edge := range edges {
		child, err := e.Repo.GetDeadlineTx(ctx, tx, edge.DeadlineID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			return err
		}
		// Manually edited dependents are preserved even under cascade.
		whollyChainDefined := child.IsCalculated && child.OriginalDeadlineDate == nil
		if policy == config.DeleteCascade && whollyChainDefined {
			if err := e.deleteDeadlineTx(ctx, tx, child, actorID); err != nil {
				return err
			}
			continue
		}
		if err := e.recordHistoryTx(ctx, tx, child.ID, "is_dependent", "true", "false",
			fmt.Sprintf("parent deadline %s deleted", d.ID), "system", actorID); err != nil {
			return err
		}
		child.IsDependent = false
		child.AutoRecalculate = false
		child.UpdatedAt = now
		if err := e.Repo.UpdateDeadlineTx(ctx, tx, child); err != nil {
			return err
		}
	}
	if err := e.Repo.DeleteDeadlineTx(ctx, tx, d.ID); err != nil {
		return err
	}
	return e.Events.Append(ctx, tx, "deadline.deleted", d.CaseID, "deadline", d.ID, actorID, events.EventPayload{
		"title": d.Title, "policy": policy, "dependents": len(edges),
	})
}

func (e Engine) recordHistoryTx(ctx context.Context, tx *sql.Tx, deadlineID, field, oldValue, newValue, reason, changeType, actorID string) error {
	return e.Repo.InsertHistoryTx(ctx, tx, domain.DeadlineHistory{
		ID:         uuid.New().String(),
		DeadlineID: deadlineID,
		FieldName:  field,
		OldValue:   oldValue,
		NewValue:   newValue,
		Reason:     reason,
		ChangeType: changeType,
		ActorID:    actorID,
		CreatedAt:  e.now().UTC().Format(time.RFC3339),
	})
}
