package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEmployeeRegistered = "employee.registered"
	EventTypeLeaveDecided       = "leave.decided"
)

type EmployeeRegisteredEvent struct {
	BaseEvent
	EmployeeID int64  `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

func NewEmployeeRegisteredEvent(employeeID int64, name, email string) *EmployeeRegisteredEvent {
	return &EmployeeRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmployeeRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id": employeeID,
				"email":       email,
			},
		},
		EmployeeID: employeeID,
		Name:       name,
		Email:      email,
	}
}

type LeaveDecidedEvent struct {
	BaseEvent
	LeaveID    int64     `json:"leave_id"`
	OwnerName  string    `json:"owner_name"`
	OwnerEmail string    `json:"owner_email"`
	Status     string    `json:"status"`
	Comment    string    `json:"comment"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

func NewLeaveDecidedEvent(leaveID int64, ownerName, ownerEmail, status, comment string, start, end time.Time) *LeaveDecidedEvent {
	return &LeaveDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"leave_id": leaveID,
				"status":   status,
			},
		},
		LeaveID:    leaveID,
		OwnerName:  ownerName,
		OwnerEmail: ownerEmail,
		Status:     status,
		Comment:    comment,
		StartDate:  start,
		EndDate:    end,
	}
}
