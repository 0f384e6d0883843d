package repo

import (
	"context"
	"database/sql"

	"docketline/internal/domain"
)

const dependencyColumns = `id,deadline_id,depends_on_deadline_id,offset_days,offset_direction,add_service_days,
auto_recalculate,last_recalculated,created_at`

func scanDependency(scan func(...any) error) (domain.DeadlineDependency, error) {
	var dep domain.DeadlineDependency
	var addSvc, autoRecalc int
	var lastRecalc sql.NullString
	err := scan(&dep.ID, &dep.DeadlineID, &dep.DependsOnID, &dep.OffsetDays, &dep.OffsetDirection,
		&addSvc, &autoRecalc, &lastRecalc, &dep.CreatedAt)
	if err == sql.ErrNoRows {
		return dep, ErrNotFound
	}
	if err != nil {
		return dep, err
	}
	dep.AddServiceDays = addSvc == 1
	dep.AutoRecalculate = autoRecalc == 1
	if lastRecalc.Valid {
		v := lastRecalc.String
		dep.LastRecalculated = &v
	}
	return dep, nil
}

func (r Repo) InsertDependencyTx(ctx context.Context, tx *sql.Tx, dep domain.DeadlineDependency) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO deadline_dependencies(`+dependencyColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		dep.ID, dep.DeadlineID, dep.DependsOnID, dep.OffsetDays, dep.OffsetDirection,
		boolToInt(dep.AddServiceDays), boolToInt(dep.AutoRecalculate), nullableStringPtr(dep.LastRecalculated), dep.CreatedAt)
	return err
}

// ListDependentsTx returns edges whose parent is deadlineID.
func (r Repo) ListDependentsTx(ctx context.Context, tx *sql.Tx, deadlineID string) ([]domain.DeadlineDependency, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+dependencyColumns+` FROM deadline_dependencies WHERE depends_on_deadline_id=? ORDER BY created_at ASC, id ASC`, deadlineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.DeadlineDependency
	for rows.Next() {
		dep, err := scanDependency(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, dep)
	}
	return res, rows.Err()
}

// ListParents returns the parent deadline ids of deadlineID.
func (r Repo) ListParents(ctx context.Context, deadlineID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT depends_on_deadline_id FROM deadline_dependencies WHERE deadline_id=?`, deadlineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}

func (r Repo) ListDependenciesByCase(ctx context.Context, caseID string) ([]domain.DeadlineDependency, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT dd.id,dd.deadline_id,dd.depends_on_deadline_id,dd.offset_days,dd.offset_direction,
dd.add_service_days,dd.auto_recalculate,dd.last_recalculated,dd.created_at
FROM deadline_dependencies dd JOIN deadlines d ON d.id=dd.deadline_id
WHERE d.case_id=? ORDER BY dd.created_at ASC, dd.id ASC`, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.DeadlineDependency
	for rows.Next() {
		dep, err := scanDependency(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, dep)
	}
	return res, rows.Err()
}

// RemoveDependenciesOfTx deletes all edges pointing at parents from
// the given child deadline.
func (r Repo) RemoveDependenciesOfTx(ctx context.Context, tx *sql.Tx, deadlineID string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM deadline_dependencies WHERE deadline_id=?`, deadlineID)
	return err
}

func (r Repo) TouchDependencyRecalcTx(ctx context.Context, tx *sql.Tx, edgeID, ts string) error {
	_, err := tx.ExecContext(ctx, `UPDATE deadline_dependencies SET last_recalculated=? WHERE id=?`, ts, edgeID)
	return err
}
