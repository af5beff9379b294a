package employee

import (
	"time"

	departmentDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/department"
)

type Employee struct {
	ID              int64                           `gorm:"primaryKey"`
	Name            string                          `gorm:"column:name;not null"`
	Email           string                          `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash    string                          `gorm:"column:password_hash;not null"`
	Role            string                          `gorm:"column:role;not null;default:employee"`
	DepartmentID    *int64                          `gorm:"column:department_id;index"`
	Department      *departmentDatamodel.Department `gorm:"foreignKey:DepartmentID"`
	HireDate        time.Time                       `gorm:"column:hire_date;type:date;not null"`
	AnnualLeaveDays int                             `gorm:"column:annual_leave_days;not null"`
	CreatedAt       time.Time                       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}

type PasswordResetToken struct {
	ID         int64     `gorm:"primaryKey"`
	Token      string    `gorm:"column:token;uniqueIndex;not null"`
	EmployeeID int64     `gorm:"column:employee_id;index;not null"`
	ExpiresAt  time.Time `gorm:"column:expires_at;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
