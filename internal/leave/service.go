package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/events"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/employee"
)

// Filter selects requests for scoped listings. Nil fields do not filter.
type Filter struct {
	DepartmentID *int64
	Status       *Status
}

// Repository is the leave request store. Reads return requests with their Owner populated.
type Repository interface {
	Create(ctx context.Context, request *Request) error
	GetByID(ctx context.Context, id int64) (*Request, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*Request, error)
	List(ctx context.Context, filter Filter) ([]*Request, error)
	// Decide persists a decision only while the stored request is still PENDING,
	// returning ErrLeaveAlreadyDecided otherwise.
	Decide(ctx context.Context, request *Request) error
}

type EmployeeLookup interface {
	GetByID(ctx context.Context, id int64) (*employee.Employee, error)
}

type Service struct {
	repo      Repository
	employees EmployeeLookup
	publisher events.Publisher
	now       internal.Clock
	logger    *slog.Logger
}

func NewService(repo Repository, employees EmployeeLookup, publisher events.Publisher, now internal.Clock, logger *slog.Logger) *Service {
	if now == nil {
		now = internal.SystemClock
	}
	return &Service{
		repo:      repo,
		employees: employees,
		publisher: publisher,
		now:       now,
		logger:    logger,
	}
}

// Create files a PENDING request for the caller. Nothing is stored when validation fails.
func (s *Service) Create(ctx context.Context, p identity.Principal, dto CreateLeaveDTO) (*Request, error) {
	if err := identity.Require(p, identity.CapCreateLeave); err != nil {
		return nil, err
	}

	start, end, verr := dto.Validate()
	if verr != nil {
		s.logger.Debug("leave request validation failed", "error", verr, "employee_id", p.EmployeeID)
		return nil, verr
	}

	request := NewRequest(p.EmployeeID, start, end, dto.Reason)
	if err := s.repo.Create(ctx, request); err != nil {
		s.logger.Error("failed to create leave request", "error", err, "employee_id", p.EmployeeID)
		return nil, internal.NewInternalError("failed to create leave request", err)
	}

	s.logger.Info("leave request created",
		"leave_id", request.ID,
		"employee_id", p.EmployeeID,
		"start_date", dto.StartDate,
		"end_date", dto.EndDate,
		"days", request.Duration())

	return request, nil
}

func (s *Service) Approve(ctx context.Context, p identity.Principal, id int64) (*Request, error) {
	return s.decide(ctx, p, id, func(r *Request, at time.Time) error {
		return r.Approve(p.EmployeeID, at)
	})
}

// Reject stores comment verbatim; an omitted comment is stored as "".
func (s *Service) Reject(ctx context.Context, p identity.Principal, id int64, comment string) (*Request, error) {
	return s.decide(ctx, p, id, func(r *Request, at time.Time) error {
		return r.Reject(p.EmployeeID, comment, at)
	})
}

func (s *Service) decide(ctx context.Context, p identity.Principal, id int64, transition func(*Request, time.Time) error) (*Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("failed to load leave request", err, id)
	}

	var ownerDepartment *int64
	if request.Owner != nil {
		ownerDepartment = request.Owner.DepartmentID
	}
	if err := identity.AuthorizeDecision(p, request.EmployeeID, ownerDepartment); err != nil {
		s.logger.Warn("leave decision denied",
			"leave_id", id,
			"approver_id", p.EmployeeID,
			"owner_id", request.EmployeeID,
			"reason", err)
		return nil, err
	}

	if err := transition(request, s.now()); err != nil {
		s.logger.Warn("leave request already decided", "leave_id", id, "status", request.Status)
		return nil, err
	}

	if err := s.repo.Decide(ctx, request); err != nil {
		return nil, s.storeError("failed to store leave decision", err, id)
	}

	s.logger.Info("leave request decided",
		"leave_id", id,
		"status", request.Status,
		"approver_id", p.EmployeeID,
		"owner_id", request.EmployeeID)

	if s.publisher != nil && request.Owner != nil {
		_ = s.publisher.Publish(ctx, events.NewLeaveDecidedEvent(
			request.ID, request.Owner.Name, request.Owner.Email,
			string(request.Status), request.Comment, request.StartDate, request.EndDate))
	}

	return request, nil
}

// ListMine returns the caller's requests newest start first with their accounting summary.
func (s *Service) ListMine(ctx context.Context, p identity.Principal) (*MyLeavesResponse, error) {
	if err := identity.Require(p, identity.CapViewOwnLeaves); err != nil {
		return nil, err
	}

	owner, err := s.employees.GetByID(ctx, p.EmployeeID)
	if err != nil {
		return nil, s.storeError("failed to load employee", err, p.EmployeeID)
	}

	requests, err := s.repo.ListByEmployee(ctx, p.EmployeeID)
	if err != nil {
		return nil, s.storeError("failed to list leave requests", err, 0)
	}

	entries := make([]MyLeaveEntry, 0, len(requests))
	for _, r := range requests {
		entries = append(entries, MyLeaveEntry{LeaveResponse: r.ToResponse(), DisplayStatus: r.Status.Display()})
	}

	return &MyLeavesResponse{
		Leaves:  entries,
		Summary: Summarize(requests, owner.AnnualLeaveDays),
	}, nil
}

// ListForScope lists requests the caller may act on: their department for managers,
// everything for HR access. The department filter only applies with HR access.
func (s *Service) ListForScope(ctx context.Context, p identity.Principal, filter ScopeFilter) ([]*Request, error) {
	scope, err := identity.ScopeFor(p)
	if err != nil {
		s.logger.Warn("scoped leave listing denied", "employee_id", p.EmployeeID, "role", p.Role, "reason", err)
		return nil, err
	}

	f := Filter{Status: filter.Status}
	if scope.All {
		f.DepartmentID = filter.DepartmentID
	} else {
		deptID := scope.DepartmentID
		f.DepartmentID = &deptID
	}

	requests, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, s.storeError("failed to list leave requests", err, 0)
	}
	return requests, nil
}

// EmployeeLeaveStatus is the HR view of one employee's requests and balance.
func (s *Service) EmployeeLeaveStatus(ctx context.Context, p identity.Principal, employeeID int64) (*EmployeeLeaveStatusResponse, error) {
	if err := identity.Require(p, identity.CapViewAllLeaves); err != nil {
		return nil, err
	}

	owner, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, s.storeError("failed to load employee", err, employeeID)
	}

	requests, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, s.storeError("failed to list leave requests", err, 0)
	}

	leaves := make([]LeaveResponse, 0, len(requests))
	for _, r := range requests {
		leaves = append(leaves, r.ToResponse())
	}

	return &EmployeeLeaveStatusResponse{
		EmployeeID: owner.ID,
		Name:       owner.Name,
		Leaves:     leaves,
		Summary:    Summarize(requests, owner.AnnualLeaveDays),
	}, nil
}

func (s *Service) storeError(msg string, err error, id int64) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error(msg, "error", err, "id", id)
	return internal.NewInternalError(msg, err)
}
