package repo

import (
	"context"
	"database/sql"
	"strings"

	"docketline/internal/domain"
)

const deadlineColumns = `id,case_id,title,description,deadline_date,deadline_time,deadline_type,priority,status,
party_role,action_required,applicable_rule,calculation_basis,is_calculated,is_dependent,auto_recalculate,
original_deadline_date,created_at,updated_at`

func scanDeadline(scan func(...any) error) (domain.Deadline, error) {
	var d domain.Deadline
	var desc, dtime, dtype, party, action, rule, basis, original sql.NullString
	var isCalc, isDep, autoRecalc int
	err := scan(&d.ID, &d.CaseID, &d.Title, &desc, &d.DeadlineDate, &dtime, &dtype, &d.Priority, &d.Status,
		&party, &action, &rule, &basis, &isCalc, &isDep, &autoRecalc, &original, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	if err != nil {
		return d, err
	}
	d.Description = desc.String
	if dtime.Valid {
		v := dtime.String
		d.DeadlineTime = &v
	}
	d.DeadlineType = dtype.String
	d.PartyRole = party.String
	d.ActionRequired = action.String
	d.ApplicableRule = rule.String
	d.CalculationBasis = basis.String
	d.IsCalculated = isCalc == 1
	d.IsDependent = isDep == 1
	d.AutoRecalculate = autoRecalc == 1
	if original.Valid {
		v := original.String
		d.OriginalDeadlineDate = &v
	}
	return d, nil
}

func (r Repo) InsertDeadlineTx(ctx context.Context, tx *sql.Tx, d domain.Deadline) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO deadlines(`+deadlineColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.CaseID, d.Title, nullable(d.Description), d.DeadlineDate, nullableStringPtr(d.DeadlineTime),
		nullable(d.DeadlineType), d.Priority, d.Status, nullable(d.PartyRole), nullable(d.ActionRequired),
		nullable(d.ApplicableRule), nullable(d.CalculationBasis), boolToInt(d.IsCalculated), boolToInt(d.IsDependent),
		boolToInt(d.AutoRecalculate), nullableStringPtr(d.OriginalDeadlineDate), d.CreatedAt, d.UpdatedAt)
	return err
}

func (r Repo) GetDeadline(ctx context.Context, id string) (domain.Deadline, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+deadlineColumns+` FROM deadlines WHERE id=?`, id)
	return scanDeadline(row.Scan)
}

func (r Repo) GetDeadlineTx(ctx context.Context, tx *sql.Tx, id string) (domain.Deadline, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+deadlineColumns+` FROM deadlines WHERE id=?`, id)
	return scanDeadline(row.Scan)
}

func (r Repo) UpdateDeadlineTx(ctx context.Context, tx *sql.Tx, d domain.Deadline) error {
	res, err := tx.ExecContext(ctx, `UPDATE deadlines SET title=?, description=?, deadline_date=?, deadline_time=?,
deadline_type=?, priority=?, status=?, party_role=?, action_required=?, applicable_rule=?, calculation_basis=?,
is_calculated=?, is_dependent=?, auto_recalculate=?, original_deadline_date=?, updated_at=? WHERE id=?`,
		d.Title, nullable(d.Description), d.DeadlineDate, nullableStringPtr(d.DeadlineTime),
		nullable(d.DeadlineType), d.Priority, d.Status, nullable(d.PartyRole), nullable(d.ActionRequired),
		nullable(d.ApplicableRule), nullable(d.CalculationBasis), boolToInt(d.IsCalculated), boolToInt(d.IsDependent),
		boolToInt(d.AutoRecalculate), nullableStringPtr(d.OriginalDeadlineDate), d.UpdatedAt, d.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteDeadlineTx(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM deadlines WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeadlineFilters narrow ListDeadlines.
type DeadlineFilters struct {
	CaseID   string
	Status   string
	Priority string
	From     string // inclusive ISO date
	To       string // inclusive ISO date
}

func (r Repo) ListDeadlines(ctx context.Context, f DeadlineFilters) ([]domain.Deadline, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if f.CaseID != "" {
		clauses = append(clauses, "case_id=?")
		args = append(args, f.CaseID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		clauses = append(clauses, "priority=?")
		args = append(args, f.Priority)
	}
	if f.From != "" {
		clauses = append(clauses, "deadline_date>=?")
		args = append(args, f.From)
	}
	if f.To != "" {
		clauses = append(clauses, "deadline_date<=?")
		args = append(args, f.To)
	}
	query := `SELECT ` + deadlineColumns + ` FROM deadlines WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY deadline_date ASC, created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Deadline
	for rows.Next() {
		d, err := scanDeadline(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (r Repo) CountDeadlinesByStatus(ctx context.Context, caseID string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM deadlines WHERE case_id=? GROUP BY status`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
