package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/leaveflow/internal"
	employeeDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/leave"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
	"github.com/frahmantamala/leaveflow/internal/employee"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

var _ employee.RepositoryAPI = (*EmployeeRepository)(nil)

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	err := r.db.WithContext(ctx).Omit("Department").Create(e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrEmailTaken
	}
	return err
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Preload("Department").Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Preload("Department").Where("email = ?", email).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) ListAll(ctx context.Context) ([]*employeeDatamodel.Employee, error) {
	var employees []*employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Preload("Department").Order("name ASC").Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) UpdateRole(ctx context.Context, id int64, role identity.Role) error {
	return r.update(ctx, id, map[string]interface{}{"role": role.String()})
}

func (r *EmployeeRepository) UpdateDepartment(ctx context.Context, id int64, departmentID *int64) error {
	return r.update(ctx, id, map[string]interface{}{"department_id": departmentID})
}

func (r *EmployeeRepository) UpdateHireDate(ctx context.Context, id int64, hireDate time.Time, annualLeaveDays int) error {
	return r.update(ctx, id, map[string]interface{}{
		"hire_date":         hireDate,
		"annual_leave_days": annualLeaveDays,
	})
}

func (r *EmployeeRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

// Delete removes the employee and everything they own in one transaction.
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&employeeDatamodel.PasswordResetToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("employee_id = ?", id).Delete(&leaveDatamodel.LeaveRequest{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&employeeDatamodel.Employee{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrEmployeeNotFound
		}
		return nil
	})
}

func (r *EmployeeRepository) update(ctx context.Context, id int64, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}
