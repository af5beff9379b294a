package leave

import (
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
)

type CreateLeaveDTO struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// Validate checks presence, date format and ordering, returning the parsed dates.
func (dto *CreateLeaveDTO) Validate() (start, end time.Time, err *internal.AppError) {
	dto.Reason = strings.TrimSpace(dto.Reason)

	v := validation.NewValidator()
	v.Field("startDate", dto.StartDate).Required().Date()
	v.Field("endDate", dto.EndDate).Required().Date()
	v.Field("reason", dto.Reason).Required().MaxLength(1000)
	if err := v.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, _ = validation.ParseDate(dto.StartDate)
	end, _ = validation.ParseDate(dto.EndDate)
	if end.Before(start) {
		return time.Time{}, time.Time{}, internal.ErrInvalidDateRange
	}
	return start, end, nil
}

type RejectLeaveDTO struct {
	Comment string `json:"comment"`
}

// ScopeFilter narrows a scoped listing. DepartmentID is honoured for HR access only.
type ScopeFilter struct {
	DepartmentID *int64
	Status       *Status
}

type LeaveResponse struct {
	ID        int64  `json:"id"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
	Status    Status `json:"status"`
	Comment   string `json:"comment"`
	Duration  int    `json:"duration"`
	CreatedAt string `json:"createdAt"`
}

func (r *Request) ToResponse() LeaveResponse {
	return LeaveResponse{
		ID:        r.ID,
		StartDate: r.StartDate.Format(validation.DateLayout),
		EndDate:   r.EndDate.Format(validation.DateLayout),
		Reason:    r.Reason,
		Status:    r.Status,
		Comment:   r.Comment,
		Duration:  r.Duration(),
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// MyLeaveEntry is a request as its owner sees it.
type MyLeaveEntry struct {
	LeaveResponse
	DisplayStatus string `json:"displayStatus"`
}

type MyLeavesResponse struct {
	Leaves []MyLeaveEntry `json:"leaves"`
	Summary
}

// ScopedLeaveEntry is a request as an approver sees it, with its owner embedded.
type ScopedLeaveEntry struct {
	LeaveResponse
	Employee *Owner `json:"employee"`
}

type ScopedLeavesResponse struct {
	Leaves []ScopedLeaveEntry `json:"leaves"`
}

type EmployeeLeaveStatusResponse struct {
	EmployeeID int64           `json:"employeeId"`
	Name       string          `json:"name"`
	Leaves     []LeaveResponse `json:"leaves"`
	Summary
}

func ToScopedResponse(requests []*Request) ScopedLeavesResponse {
	entries := make([]ScopedLeaveEntry, 0, len(requests))
	for _, r := range requests {
		entries = append(entries, ScopedLeaveEntry{LeaveResponse: r.ToResponse(), Employee: r.Owner})
	}
	return ScopedLeavesResponse{Leaves: entries}
}

// ParseScopeFilter reads the optional status and departmentId query values.
func ParseScopeFilter(status, departmentID string) (ScopeFilter, *internal.AppError) {
	var filter ScopeFilter
	if status = strings.TrimSpace(status); status != "" {
		st, ok := ParseStatus(status)
		if !ok {
			return filter, internal.NewValidationFieldError("status", "status must be one of PENDING, APPROVED, REJECTED", internal.ErrCodeValidationFailed)
		}
		filter.Status = &st
	}
	if departmentID = strings.TrimSpace(departmentID); departmentID != "" {
		id, err := strconv.ParseInt(departmentID, 10, 64)
		if err != nil || id <= 0 {
			return filter, internal.NewValidationFieldError("departmentId", "departmentId must be a positive integer", internal.ErrCodeInvalidDepartment)
		}
		filter.DepartmentID = &id
	}
	return filter, nil
}
