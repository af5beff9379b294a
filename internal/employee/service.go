package employee

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
	departmentDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/department"
	employeeDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/employee"
	"github.com/frahmantamala/leaveflow/internal/core/events"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/entitlement"
)

// RepositoryAPI is the employee store. Lookups return ErrEmployeeNotFound for unknown ids or emails.
type RepositoryAPI interface {
	Create(ctx context.Context, employee *employeeDatamodel.Employee) error
	GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	GetByEmail(ctx context.Context, email string) (*employeeDatamodel.Employee, error)
	ListAll(ctx context.Context) ([]*employeeDatamodel.Employee, error)
	UpdateRole(ctx context.Context, id int64, role identity.Role) error
	UpdateDepartment(ctx context.Context, id int64, departmentID *int64) error
	UpdateHireDate(ctx context.Context, id int64, hireDate time.Time, annualLeaveDays int) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

type DepartmentLookup interface {
	GetAll(ctx context.Context) ([]*departmentDatamodel.Department, error)
	GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	repo        RepositoryAPI
	departments DepartmentLookup
	hasher      PasswordHasher
	publisher   events.Publisher
	now         internal.Clock
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, departments DepartmentLookup, hasher PasswordHasher, publisher events.Publisher, now internal.Clock, logger *slog.Logger) *Service {
	if now == nil {
		now = internal.SystemClock
	}
	return &Service{
		repo:        repo,
		departments: departments,
		hasher:      hasher,
		publisher:   publisher,
		now:         now,
		logger:      logger,
	}
}

// Register creates an account. It is the only path that inserts employees, so
// email normalisation, uniqueness and the initial allowance are applied once here.
func (s *Service) Register(ctx context.Context, in NewEmployee) (*Employee, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkDepartment(ctx, in.DepartmentID); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, internal.ErrEmailTaken
	} else if internal.TypeOf(err) != internal.ErrorTypeNotFound {
		s.logger.Error("failed to check email", "error", err)
		return nil, internal.NewInternalError("failed to register employee", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to register employee", err)
	}

	now := s.now()
	hireDate := validation.TruncateDate(now)
	if !in.HireDate.IsZero() {
		hireDate = validation.TruncateDate(in.HireDate)
	}

	row := &employeeDatamodel.Employee{
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    hash,
		Role:            in.Role.String(),
		DepartmentID:    in.DepartmentID,
		HireDate:        hireDate,
		AnnualLeaveDays: entitlement.Calculate(hireDate, now),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if internal.TypeOf(err) == internal.ErrorTypeConflict {
			return nil, err
		}
		s.logger.Error("failed to create employee", "error", err, "email", in.Email)
		return nil, internal.NewInternalError("failed to register employee", err)
	}

	created, err := s.load(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("employee registered",
		"employee_id", created.ID,
		"role", created.Role,
		"annual_leave_days", created.AnnualLeaveDays)

	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, events.NewEmployeeRegisteredEvent(created.ID, created.Name, created.Email))
	}

	return created, nil
}

func (s *Service) Create(ctx context.Context, p identity.Principal, dto CreateEmployeeDTO) (*Employee, error) {
	if err := identity.Require(p, identity.CapManageEmployees); err != nil {
		s.logger.Warn("create employee denied", "employee_id", p.EmployeeID, "role", p.Role)
		return nil, err
	}

	in, verr := dto.ToNewEmployee()
	if verr != nil {
		return nil, verr
	}
	return s.Register(ctx, in)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Employee, error) {
	return s.load(ctx, id)
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	row, err := s.repo.GetByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return FromDataModel(row)
}

func (s *Service) SetPasswordHash(ctx context.Context, id int64, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

// Directory lists every employee alphabetically, managers tagged.
func (s *Service) Directory(ctx context.Context, p identity.Principal) ([]DirectoryEntry, error) {
	if err := identity.Require(p, identity.CapManageEmployees); err != nil {
		return nil, err
	}

	employees, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(employees, func(i, j int) bool {
		return strings.ToLower(employees[i].Name) < strings.ToLower(employees[j].Name)
	})

	entries := make([]DirectoryEntry, 0, len(employees))
	for _, e := range employees {
		entries = append(entries, DirectoryEntry{
			ID:              e.ID,
			Name:            e.DisplayName(),
			Email:           e.Email,
			Role:            e.Role,
			Department:      e.DepartmentLabel(),
			AnnualLeaveDays: e.AnnualLeaveDays,
		})
	}
	return entries, nil
}

// GroupByDepartment lists every department with its employees; unassigned employees come last.
func (s *Service) GroupByDepartment(ctx context.Context, p identity.Principal) ([]DepartmentGroup, error) {
	if err := identity.Require(p, identity.CapManageEmployees); err != nil {
		return nil, err
	}

	departments, err := s.departments.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewInternalError("failed to list departments", err)
	}

	employees, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}

	return groupByDepartment(departments, employees), nil
}

func (s *Service) ChangeRole(ctx context.Context, p identity.Principal, id int64, dto UpdateRoleDTO) (*Employee, error) {
	if err := identity.Require(p, identity.CapManageEmployees); err != nil {
		return nil, err
	}

	role, err := identity.ParseRole(dto.Role)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, s.storeError("failed to update role", err, id)
	}

	s.logger.Info("employee role changed", "employee_id", id, "role", role, "by", p.EmployeeID)
	return s.load(ctx, id)
}

func (s *Service) ChangeDepartment(ctx context.Context, p identity.Principal, id int64, dto UpdateDepartmentDTO) (*Employee, error) {
	if err := identity.Require(p, identity.CapManageEmployees); err != nil {
		return nil, err
	}

	if err := s.checkDepartment(ctx, dto.DepartmentID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDepartment(ctx, id, dto.DepartmentID); err != nil {
		return nil, s.storeError("failed to update department", err, id)
	}

	s.logger.Info("employee department changed", "employee_id", id, "department_id", dto.DepartmentID, "by", p.EmployeeID)
	return s.load(ctx, id)
}

// ChangeHireDate corrects a hire date and recomputes the allowance in the same write.
func (s *Service) ChangeHireDate(ctx context.Context, p identity.Principal, id int64, dto UpdateHireDateDTO) (*Employee, error) {
	if err := identity.Require(p, identity.CapManageEmployees); err != nil {
		return nil, err
	}

	hireDate, verr := dto.Parse()
	if verr != nil {
		return nil, verr
	}

	days := entitlement.Calculate(hireDate, s.now())
	if err := s.repo.UpdateHireDate(ctx, id, hireDate, days); err != nil {
		return nil, s.storeError("failed to update hire date", err, id)
	}

	s.logger.Info("employee hire date changed", "employee_id", id, "hire_date", hireDate.Format(validation.DateLayout), "annual_leave_days", days)
	return s.load(ctx, id)
}

// Delete removes an employee together with their leave requests and reset tokens.
func (s *Service) Delete(ctx context.Context, p identity.Principal, id int64) error {
	if err := identity.Require(p, identity.CapManageEmployees); err != nil {
		return err
	}
	if p.EmployeeID == id {
		return internal.ErrSelfDeletion
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeError("failed to delete employee", err, id)
	}

	s.logger.Info("employee deleted", "employee_id", id, "by", p.EmployeeID)
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError("failed to load employee", err, id)
	}
	e, err := FromDataModel(row)
	if err != nil {
		return nil, internal.NewInternalError("failed to load employee", err)
	}
	return e, nil
}

func (s *Service) listAll(ctx context.Context) ([]*Employee, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	employees, err := fromDataModels(rows)
	if err != nil {
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	return employees, nil
}

func (s *Service) checkDepartment(ctx context.Context, departmentID *int64) error {
	if departmentID == nil {
		return nil
	}
	if _, err := s.departments.GetByID(ctx, *departmentID); err != nil {
		if internal.TypeOf(err) == internal.ErrorTypeNotFound {
			return internal.NewValidationFieldError("departmentId", "department does not exist", internal.ErrCodeInvalidDepartment)
		}
		return internal.NewInternalError("failed to check department", err)
	}
	return nil
}

// storeError passes AppErrors (not found, conflict) through and wraps anything else.
func (s *Service) storeError(msg string, err error, id int64) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error(msg, "error", err, "employee_id", id)
	return internal.NewInternalError(msg, err)
}
