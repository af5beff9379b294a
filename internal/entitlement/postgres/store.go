package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/entitlement"
)

type EntitlementStore struct {
	db *sqlx.DB
}

func NewEntitlementStore(db *sqlx.DB) *EntitlementStore {
	return &EntitlementStore{db: db}
}

func (s *EntitlementStore) ListEntitlements(ctx context.Context) ([]entitlement.Snapshot, error) {
	var snapshots []entitlement.Snapshot
	query := `SELECT id, hire_date, annual_leave_days FROM employees ORDER BY id`
	if err := s.db.SelectContext(ctx, &snapshots, query); err != nil {
		return nil, fmt.Errorf("select entitlements: %w", err)
	}
	return snapshots, nil
}

func (s *EntitlementStore) UpdateAnnualLeaveDays(ctx context.Context, employeeID int64, days int) error {
	query := s.db.Rebind(`UPDATE employees SET annual_leave_days = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, days, employeeID)
	if err != nil {
		return fmt.Errorf("update annual leave days: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}
