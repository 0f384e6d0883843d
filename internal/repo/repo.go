package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"docketline/internal/config"
	"docketline/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

// DefaultConfigID keys the single active rule config row.
const DefaultConfigID = "default"

func (r Repo) InsertCase(ctx context.Context, c domain.Case) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO cases(id,title,case_number,jurisdiction,court_type,status,created_at) VALUES (?,?,?,?,?,?,?)`,
		c.ID, c.Title, nullable(c.CaseNumber), c.Jurisdiction, c.CourtType, c.Status, c.CreatedAt)
	return err
}

func (r Repo) InsertCaseTx(ctx context.Context, tx *sql.Tx, c domain.Case) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO cases(id,title,case_number,jurisdiction,court_type,status,created_at) VALUES (?,?,?,?,?,?,?)`,
		c.ID, c.Title, nullable(c.CaseNumber), c.Jurisdiction, c.CourtType, c.Status, c.CreatedAt)
	return err
}

func (r Repo) GetCase(ctx context.Context, id string) (domain.Case, error) {
	var c domain.Case
	var num sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id,title,case_number,jurisdiction,court_type,status,created_at FROM cases WHERE id=?`, id).
		Scan(&c.ID, &c.Title, &num, &c.Jurisdiction, &c.CourtType, &c.Status, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if num.Valid {
		c.CaseNumber = num.String
	}
	return c, err
}

// SingleCase returns the only case in the workspace, erroring when the
// workspace holds none or several.
func (r Repo) SingleCase(ctx context.Context) (domain.Case, error) {
	cases, err := r.ListCases(ctx)
	if err != nil {
		return domain.Case{}, err
	}
	if len(cases) == 0 {
		return domain.Case{}, ErrNotFound
	}
	if len(cases) > 1 {
		return domain.Case{}, fmt.Errorf("multiple cases exist; specify --case")
	}
	return cases[0], nil
}

func (r Repo) ListCases(ctx context.Context) ([]domain.Case, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,title,COALESCE(case_number,''),jurisdiction,court_type,status,created_at FROM cases ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Case
	for rows.Next() {
		var c domain.Case
		if err := rows.Scan(&c.ID, &c.Title, &c.CaseNumber, &c.Jurisdiction, &c.CourtType, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) UpdateCaseStatus(ctx context.Context, id, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE cases SET status=? WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteCase(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM cases WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpsertRuleConfig(ctx context.Context, cfg *config.Config) error {
	return upsertRuleConfig(ctx, r.DB, nil, cfg)
}

func (r Repo) UpsertRuleConfigTx(ctx context.Context, tx *sql.Tx, cfg *config.Config) error {
	return upsertRuleConfig(ctx, nil, tx, cfg)
}

func upsertRuleConfig(ctx context.Context, db *sql.DB, tx *sql.Tx, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	exec := func(query string, args ...any) (sql.Result, error) {
		if tx != nil {
			return tx.ExecContext(ctx, query, args...)
		}
		return db.ExecContext(ctx, query, args...)
	}
	_, err = exec(`INSERT INTO rule_configs(id,config_json,created_at,updated_at) VALUES (?,?,?,?)
ON CONFLICT(id) DO UPDATE SET config_json=excluded.config_json, updated_at=excluded.updated_at`, DefaultConfigID, string(payload), now, now)
	return err
}

func (r Repo) GetRuleConfig(ctx context.Context) (*config.Config, error) {
	var payload string
	err := r.DB.QueryRowContext(ctx, `SELECT config_json FROM rule_configs WHERE id=?`, DefaultConfigID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

func (r Repo) LatestEvents(ctx context.Context, n int, caseID, evtType, entityKind, entityID string) ([]domain.Event, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if caseID != "" {
		clauses = append(clauses, "case_id=?")
		args = append(args, caseID)
	}
	if evtType != "" {
		clauses = append(clauses, "type=?")
		args = append(args, evtType)
	}
	if entityKind != "" {
		clauses = append(clauses, "entity_kind=?")
		args = append(args, entityKind)
	}
	if entityID != "" {
		clauses = append(clauses, "entity_id=?")
		args = append(args, entityID)
	}
	if n <= 0 {
		n = 20
	}
	args = append(args, n)
	query := `SELECT id,ts,type,COALESCE(case_id,''),entity_kind,COALESCE(entity_id,''),actor_id,payload_json FROM events WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY id DESC LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.CaseID, &e.EntityKind, &e.EntityID, &e.ActorID, &e.Payload); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil {
		return nil
	}
	if *v == "" {
		return nil
	}
	return *v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
