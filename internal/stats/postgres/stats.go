package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/leaveflow/internal/stats"
)

type StatsStore struct {
	db *sqlx.DB
}

func NewStatsStore(db *sqlx.DB) *StatsStore {
	return &StatsStore{db: db}
}

var _ stats.Store = (*StatsStore)(nil)

const (
	employeesByRoleQuery = `
SELECT role AS label, COUNT(*) AS total
FROM employees
GROUP BY role
ORDER BY role`

	employeesByDepartmentQuery = `
SELECT COALESCE(d.name, '') AS label, COUNT(*) AS total
FROM employees e
LEFT JOIN departments d ON d.id = e.department_id
GROUP BY d.name
ORDER BY d.name IS NULL, d.name`

	leavesByStatusQuery = `
SELECT status AS label, COUNT(*) AS total
FROM leave_requests
GROUP BY status
ORDER BY status`

	leavesByDepartmentQuery = `
SELECT COALESCE(d.name, '') AS label, COUNT(*) AS total
FROM leave_requests l
JOIN employees e ON e.id = l.employee_id
LEFT JOIN departments d ON d.id = e.department_id
GROUP BY d.name
ORDER BY d.name IS NULL, d.name`
)

func (s *StatsStore) CountEmployeesByRole(ctx context.Context) ([]stats.GroupCount, error) {
	return s.groupCounts(ctx, "employees by role", employeesByRoleQuery)
}

func (s *StatsStore) CountEmployeesByDepartment(ctx context.Context) ([]stats.GroupCount, error) {
	return s.groupCounts(ctx, "employees by department", employeesByDepartmentQuery)
}

func (s *StatsStore) CountLeavesByStatus(ctx context.Context) ([]stats.GroupCount, error) {
	return s.groupCounts(ctx, "leaves by status", leavesByStatusQuery)
}

func (s *StatsStore) CountLeavesByDepartment(ctx context.Context) ([]stats.GroupCount, error) {
	return s.groupCounts(ctx, "leaves by department", leavesByDepartmentQuery)
}

func (s *StatsStore) groupCounts(ctx context.Context, report, query string) ([]stats.GroupCount, error) {
	var rows []stats.GroupCount
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select %s: %w", report, err)
	}
	return rows, nil
}
