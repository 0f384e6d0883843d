package repo

import (
	"context"
	"database/sql"

	"docketline/internal/domain"
)

func (r Repo) InsertHistoryTx(ctx context.Context, tx *sql.Tx, h domain.DeadlineHistory) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO deadline_history(id,deadline_id,field_name,old_value,new_value,reason,change_type,actor_id,created_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		h.ID, h.DeadlineID, h.FieldName, nullable(h.OldValue), nullable(h.NewValue), nullable(h.Reason),
		h.ChangeType, h.ActorID, h.CreatedAt)
	return err
}

func (r Repo) ListHistory(ctx context.Context, deadlineID string) ([]domain.DeadlineHistory, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,deadline_id,field_name,COALESCE(old_value,''),COALESCE(new_value,''),COALESCE(reason,''),change_type,actor_id,created_at
FROM deadline_history WHERE deadline_id=? ORDER BY created_at ASC, id ASC`, deadlineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.DeadlineHistory
	for rows.Next() {
		var h domain.DeadlineHistory
		if err := rows.Scan(&h.ID, &h.DeadlineID, &h.FieldName, &h.OldValue, &h.NewValue, &h.Reason, &h.ChangeType, &h.ActorID, &h.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, h)
	}
	return res, rows.Err()
}

func (r Repo) CountHistoryByType(ctx context.Context, deadlineID, changeType string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM deadline_history WHERE deadline_id=? AND change_type=?`, deadlineID, changeType).Scan(&n)
	return n, err
}

func (r Repo) InsertChainTx(ctx context.Context, tx *sql.Tx, c domain.DeadlineChain) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO deadline_chains(id,case_id,trigger_deadline_id,trigger_type,template_id,service_method,trigger_date,deadline_count,created_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		c.ID, c.CaseID, c.TriggerDeadlineID, c.TriggerType, c.TemplateID, c.ServiceMethod, c.TriggerDate, c.DeadlineCount, c.CreatedAt)
	return err
}

func (r Repo) ListChains(ctx context.Context, caseID string) ([]domain.DeadlineChain, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,case_id,trigger_deadline_id,trigger_type,template_id,service_method,trigger_date,deadline_count,created_at
FROM deadline_chains WHERE case_id=? ORDER BY created_at ASC, id ASC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.DeadlineChain
	for rows.Next() {
		var c domain.DeadlineChain
		if err := rows.Scan(&c.ID, &c.CaseID, &c.TriggerDeadlineID, &c.TriggerType, &c.TemplateID, &c.ServiceMethod, &c.TriggerDate, &c.DeadlineCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
