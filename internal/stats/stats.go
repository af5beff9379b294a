package stats

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/employee"
)

// GroupCount is one row of a GROUP BY report. Key is empty for NULL groups.
type GroupCount struct {
	Key   string `db:"label"`
	Count int    `db:"total"`
}

type Store interface {
	CountEmployeesByRole(ctx context.Context) ([]GroupCount, error)
	CountEmployeesByDepartment(ctx context.Context) ([]GroupCount, error)
	CountLeavesByStatus(ctx context.Context) ([]GroupCount, error)
	CountLeavesByDepartment(ctx context.Context) ([]GroupCount, error)
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type Statistics struct {
	TotalUsers          int               `json:"totalUsers"`
	TotalEmployees      int               `json:"totalEmployees"`
	TotalManagers       int               `json:"totalManagers"`
	TotalHR             int               `json:"totalHR"`
	UsersPerDepartment  []DepartmentCount `json:"usersPerDepartment"`
	PendingLeaves       int               `json:"pendingLeaves"`
	ApprovedLeaves      int               `json:"approvedLeaves"`
	RejectedLeaves      int               `json:"rejectedLeaves"`
	TotalLeaves         int               `json:"totalLeaves"`
	ApprovalRate        int               `json:"approvalRate"`
	LeavesPerDepartment []DepartmentCount `json:"leavesPerDepartment"`
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Overview builds the HR dashboard figures.
func (s *Service) Overview(ctx context.Context, p identity.Principal) (*Statistics, error) {
	if err := identity.Require(p, identity.CapViewStatistics); err != nil {
		return nil, err
	}

	roles, err := s.store.CountEmployeesByRole(ctx)
	if err != nil {
		return nil, s.fail("employees by role", err)
	}
	usersPerDept, err := s.store.CountEmployeesByDepartment(ctx)
	if err != nil {
		return nil, s.fail("employees by department", err)
	}
	statuses, err := s.store.CountLeavesByStatus(ctx)
	if err != nil {
		return nil, s.fail("leaves by status", err)
	}
	leavesPerDept, err := s.store.CountLeavesByDepartment(ctx)
	if err != nil {
		return nil, s.fail("leaves by department", err)
	}

	out := &Statistics{
		UsersPerDepartment:  departmentCounts(usersPerDept),
		LeavesPerDepartment: departmentCounts(leavesPerDept),
	}

	for _, r := range roles {
		out.TotalUsers += r.Count
		switch identity.Role(r.Key) {
		case identity.RoleEmployee:
			out.TotalEmployees = r.Count
		case identity.RoleManager:
			out.TotalManagers = r.Count
		case identity.RoleHR:
			out.TotalHR = r.Count
		}
	}

	for _, st := range statuses {
		switch st.Key {
		case "PENDING":
			out.PendingLeaves = st.Count
		case "APPROVED":
			out.ApprovedLeaves = st.Count
		case "REJECTED":
			out.RejectedLeaves = st.Count
		}
	}
	out.TotalLeaves = out.PendingLeaves + out.ApprovedLeaves + out.RejectedLeaves
	out.ApprovalRate = ApprovalRate(out.ApprovedLeaves, out.TotalLeaves)

	return out, nil
}

// ApprovalRate is approved over all requests as a whole percentage, rounded half up.
func ApprovalRate(approved, total int) int {
	if total <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(approved)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(rate.IntPart())
}

func departmentCounts(rows []GroupCount) []DepartmentCount {
	out := make([]DepartmentCount, 0, len(rows))
	for _, r := range rows {
		name := r.Key
		if name == "" {
			name = employee.NoDepartmentLabel
		}
		out = append(out, DepartmentCount{Department: name, Count: r.Count})
	}
	return out
}

func (s *Service) fail(report string, err error) error {
	s.logger.Error("failed to build statistics", "report", report, "error", err)
	return internal.NewInternalError("failed to build statistics", err)
}
