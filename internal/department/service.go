package department

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/leaveflow/internal"
	departmentDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/department"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
)

// RepositoryAPI looks departments up. GetByName returns nil, nil when no department matches.
type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*departmentDatamodel.Department, error)
	GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error)
	GetByName(ctx context.Context, name string) (*departmentDatamodel.Department, error)
	Create(ctx context.Context, department *departmentDatamodel.Department) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Department, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewInternalError("failed to list departments", err)
	}

	departments := make([]*Department, 0, len(rows))
	for _, row := range rows {
		departments = append(departments, FromDataModel(row))
	}
	return departments, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Department, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, p identity.Principal, dto CreateDepartmentDTO) (*Department, error) {
	if err := identity.Require(p, identity.CapManageDepartments); err != nil {
		s.logger.Warn("create department denied", "employee_id", p.EmployeeID, "role", p.Role)
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, internal.NewInternalError("failed to check department", err)
	}
	if existing != nil {
		return nil, internal.ErrDepartmentExists
	}

	d := NewDepartment(dto.Name)
	row := ToDataModel(d)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", row.ID, "name", row.Name, "by", p.EmployeeID)
	return FromDataModel(row), nil
}
