package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/leaveflow/internal"
	leaveDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/leave"
	"github.com/frahmantamala/leaveflow/internal/leave"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

var _ leave.Repository = (*LeaveRepository)(nil)

func (r *LeaveRepository) Create(ctx context.Context, request *leave.Request) error {
	row := leave.ToDataModel(request)
	if err := r.db.WithContext(ctx).Omit("Employee").Create(row).Error; err != nil {
		return err
	}
	request.ID = row.ID
	request.CreatedAt = row.CreatedAt
	return nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leave.Request, error) {
	var row leaveDatamodel.LeaveRequest
	err := r.withOwner(ctx).Where("leave_requests.id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrLeaveNotFound
		}
		return nil, err
	}
	return leave.FromDataModel(&row), nil
}

func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*leave.Request, error) {
	var rows []*leaveDatamodel.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return fromDataModels(rows), nil
}

func (r *LeaveRepository) List(ctx context.Context, filter leave.Filter) ([]*leave.Request, error) {
	query := r.withOwner(ctx)
	if filter.DepartmentID != nil {
		query = query.Joins("JOIN employees ON employees.id = leave_requests.employee_id").
			Where("employees.department_id = ?", *filter.DepartmentID)
	}
	if filter.Status != nil {
		query = query.Where("leave_requests.status = ?", string(*filter.Status))
	}

	var rows []*leaveDatamodel.LeaveRequest
	if err := query.Order("leave_requests.created_at DESC").Order("leave_requests.id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromDataModels(rows), nil
}

// Decide only touches rows that are still PENDING so two approvers cannot both win.
func (r *LeaveRepository) Decide(ctx context.Context, request *leave.Request) error {
	result := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveRequest{}).
		Where("id = ? AND status = ?", request.ID, string(leave.StatusPending)).
		Updates(map[string]interface{}{
			"status":     string(request.Status),
			"comment":    request.Comment,
			"decided_by": request.DecidedBy,
			"decided_at": request.DecidedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&leaveDatamodel.LeaveRequest{}).Where("id = ?", request.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return internal.ErrLeaveNotFound
		}
		return internal.ErrLeaveAlreadyDecided
	}
	return nil
}

func (r *LeaveRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Employee.Department")
}

func fromDataModels(rows []*leaveDatamodel.LeaveRequest) []*leave.Request {
	requests := make([]*leave.Request, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, leave.FromDataModel(row))
	}
	return requests
}
