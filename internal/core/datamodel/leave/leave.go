package leave

import (
	"time"

	employeeDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/employee"
)

type LeaveRequest struct {
	ID         int64                       `gorm:"primaryKey"`
	EmployeeID int64                       `gorm:"column:employee_id;index;not null"`
	Employee   *employeeDatamodel.Employee `gorm:"foreignKey:EmployeeID"`
	StartDate  time.Time                   `gorm:"column:start_date;type:date;not null"`
	EndDate    time.Time                   `gorm:"column:end_date;type:date;not null"`
	Reason     string                      `gorm:"column:reason;not null"`
	Status     string                      `gorm:"column:status;index;not null;default:PENDING"`
	Comment    string                      `gorm:"column:comment;not null;default:''"`
	DecidedBy  *int64                      `gorm:"column:decided_by"`
	DecidedAt  *time.Time                  `gorm:"column:decided_at"`
	CreatedAt  time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
