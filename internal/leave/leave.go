package leave

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/leave"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseStatus accepts any casing of the three statuses.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, true
	}
	return "", false
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Display renders the status for people, e.g. "Approved".
func (s Status) Display() string {
	return cases.Title(language.English).String(strings.ToLower(string(s)))
}

// Owner is the employee a request belongs to, as shown in scoped listings.
type Owner struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	DepartmentID   *int64 `json:"departmentId"`
	DepartmentName string `json:"department"`
}

type Request struct {
	ID         int64
	EmployeeID int64
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     Status
	Comment    string
	DecidedBy  *int64
	DecidedAt  *time.Time
	CreatedAt  time.Time
	Owner      *Owner
}

func NewRequest(employeeID int64, start, end time.Time, reason string) *Request {
	return &Request{
		EmployeeID: employeeID,
		StartDate:  validation.TruncateDate(start),
		EndDate:    validation.TruncateDate(end),
		Reason:     reason,
		Status:     StatusPending,
	}
}

// Duration is the inclusive number of calendar days the request covers.
func (r *Request) Duration() int {
	return DaySpan(r.StartDate, r.EndDate)
}

func (r *Request) CanBeDecided() bool {
	return r.Status == StatusPending
}

// Approve moves a pending request to APPROVED and leaves the comment as is.
func (r *Request) Approve(approverID int64, at time.Time) error {
	if !r.CanBeDecided() {
		return internal.ErrLeaveAlreadyDecided
	}
	r.decide(StatusApproved, approverID, at)
	return nil
}

// Reject moves a pending request to REJECTED with the approver's comment.
func (r *Request) Reject(approverID int64, comment string, at time.Time) error {
	if !r.CanBeDecided() {
		return internal.ErrLeaveAlreadyDecided
	}
	r.Comment = comment
	r.decide(StatusRejected, approverID, at)
	return nil
}

func (r *Request) decide(status Status, approverID int64, at time.Time) {
	r.Status = status
	r.DecidedBy = &approverID
	r.DecidedAt = &at
}

func ToDataModel(r *Request) *leaveDatamodel.LeaveRequest {
	return &leaveDatamodel.LeaveRequest{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Reason:     r.Reason,
		Status:     string(r.Status),
		Comment:    r.Comment,
		DecidedBy:  r.DecidedBy,
		DecidedAt:  r.DecidedAt,
		CreatedAt:  r.CreatedAt,
	}
}

func FromDataModel(row *leaveDatamodel.LeaveRequest) *Request {
	r := &Request{
		ID:         row.ID,
		EmployeeID: row.EmployeeID,
		StartDate:  validation.TruncateDate(row.StartDate),
		EndDate:    validation.TruncateDate(row.EndDate),
		Reason:     row.Reason,
		Status:     Status(row.Status),
		Comment:    row.Comment,
		DecidedBy:  row.DecidedBy,
		DecidedAt:  row.DecidedAt,
		CreatedAt:  row.CreatedAt,
	}
	if e := row.Employee; e != nil {
		r.Owner = &Owner{
			ID:           e.ID,
			Name:         e.Name,
			Email:        e.Email,
			DepartmentID: e.DepartmentID,
		}
		if e.Department != nil {
			r.Owner.DepartmentName = e.Department.Name
		}
	}
	return r
}
