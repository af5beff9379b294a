package employee

import (
	"strings"
	"time"

	"github.com/frahmantamala/leaveflow/internal"
	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
)

// NewEmployee is the input every account-creating path funnels through.
type NewEmployee struct {
	Name         string
	Email        string
	Password     string
	Role         identity.Role
	DepartmentID *int64
	// HireDate defaults to today when zero.
	HireDate time.Time
}

func (in *NewEmployee) Validate() *internal.AppError {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = validation.NormalizeEmail(in.Email)

	v := validation.NewValidator()
	v.Field("name", in.Name).Required().MaxLength(100)
	v.Field("email", in.Email).Required().Email()
	v.Field("password", in.Password).Required().MinLength(validation.MinPasswordLength, internal.ErrCodePasswordTooShort)
	v.Field("role", string(in.Role)).Required().Custom(func(value interface{}) *internal.AppError {
		if !in.Role.Valid() {
			return internal.ErrInvalidRole
		}
		return nil
	})
	return v.Validate()
}

type CreateEmployeeDTO struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"departmentId"`
	HireDate     string `json:"hireDate,omitempty"`
}

// ToNewEmployee validates the wire fields that need parsing before the shared validation runs.
func (dto CreateEmployeeDTO) ToNewEmployee() (NewEmployee, *internal.AppError) {
	v := validation.NewValidator()
	v.Field("role", dto.Role).Required()
	v.Field("hireDate", dto.HireDate).Date()
	if err := v.Validate(); err != nil {
		return NewEmployee{}, err
	}

	role, err := identity.ParseRole(dto.Role)
	if err != nil {
		return NewEmployee{}, internal.ErrInvalidRole
	}

	in := NewEmployee{
		Name:         dto.Name,
		Email:        dto.Email,
		Password:     dto.Password,
		Role:         role,
		DepartmentID: dto.DepartmentID,
	}
	if dto.HireDate != "" {
		in.HireDate, _ = validation.ParseDate(dto.HireDate)
	}
	return in, nil
}

type UpdateRoleDTO struct {
	Role string `json:"role"`
}

// UpdateDepartmentDTO moves an employee; a null departmentId removes them from any department.
type UpdateDepartmentDTO struct {
	DepartmentID *int64 `json:"departmentId"`
}

type UpdateHireDateDTO struct {
	HireDate string `json:"hireDate"`
}

func (dto UpdateHireDateDTO) Parse() (time.Time, *internal.AppError) {
	v := validation.NewValidator()
	v.Field("hireDate", dto.HireDate).Required().Date()
	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}
	d, _ := validation.ParseDate(dto.HireDate)
	return d, nil
}

type EmployeeResponse struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Role            identity.Role `json:"role"`
	DepartmentID    *int64        `json:"departmentId"`
	Department      string        `json:"department"`
	HireDate        string        `json:"hireDate"`
	AnnualLeaveDays int           `json:"annualLeaveDays"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// DirectoryEntry is one line of the HR employee directory.
type DirectoryEntry struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Role            identity.Role `json:"role"`
	Department      string        `json:"department"`
	AnnualLeaveDays int           `json:"annualLeaveDays"`
}

type EmployeesResponse struct {
	Employees []DirectoryEntry `json:"employees"`
}

type DepartmentGroupsResponse struct {
	Departments []DepartmentGroup `json:"departments"`
}
