package employee

import (
	"fmt"
	"time"

	"github.com/frahmantamala/leaveflow/internal/core/common/validation"
	departmentDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/department"
	employeeDatamodel "github.com/frahmantamala/leaveflow/internal/core/datamodel/employee"
	"github.com/frahmantamala/leaveflow/internal/core/identity"
)

const NoDepartmentLabel = "No department"

type Employee struct {
	ID              int64
	Name            string
	Email           string
	PasswordHash    string
	Role            identity.Role
	DepartmentID    *int64
	DepartmentName  string
	HireDate        time.Time
	AnnualLeaveDays int
	CreatedAt       time.Time
}

// Principal is the identity the authorization gate sees for this employee.
func (e *Employee) Principal() identity.Principal {
	return identity.Principal{
		EmployeeID:     e.ID,
		Name:           e.Name,
		Email:          e.Email,
		Role:           e.Role,
		DepartmentID:   e.DepartmentID,
		DepartmentName: e.DepartmentName,
	}
}

// DisplayName tags managers so HR listings show who runs a department.
func (e *Employee) DisplayName() string {
	if e.Role == identity.RoleManager {
		return e.Name + " (manager)"
	}
	return e.Name
}

func (e *Employee) DepartmentLabel() string {
	if e.DepartmentName == "" {
		return NoDepartmentLabel
	}
	return e.DepartmentName
}

func (e *Employee) ToResponse() EmployeeResponse {
	return EmployeeResponse{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		Role:            e.Role,
		DepartmentID:    e.DepartmentID,
		Department:      e.DepartmentLabel(),
		HireDate:        e.HireDate.Format(validation.DateLayout),
		AnnualLeaveDays: e.AnnualLeaveDays,
		CreatedAt:       e.CreatedAt,
	}
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		PasswordHash:    e.PasswordHash,
		Role:            e.Role.String(),
		DepartmentID:    e.DepartmentID,
		HireDate:        e.HireDate,
		AnnualLeaveDays: e.AnnualLeaveDays,
		CreatedAt:       e.CreatedAt,
	}
}

// FromDataModel fails on a row whose role is outside the enumeration.
func FromDataModel(row *employeeDatamodel.Employee) (*Employee, error) {
	role, err := identity.ParseRole(row.Role)
	if err != nil {
		return nil, fmt.Errorf("employee %d has invalid role %q", row.ID, row.Role)
	}

	e := &Employee{
		ID:              row.ID,
		Name:            row.Name,
		Email:           row.Email,
		PasswordHash:    row.PasswordHash,
		Role:            role,
		DepartmentID:    row.DepartmentID,
		HireDate:        validation.TruncateDate(row.HireDate),
		AnnualLeaveDays: row.AnnualLeaveDays,
		CreatedAt:       row.CreatedAt,
	}
	if row.Department != nil {
		e.DepartmentName = row.Department.Name
	}
	return e, nil
}

func fromDataModels(rows []*employeeDatamodel.Employee) ([]*Employee, error) {
	out := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		e, err := FromDataModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// DepartmentGroup is one department with the employees assigned to it.
type DepartmentGroup struct {
	ID        *int64             `json:"id"`
	Name      string             `json:"name"`
	Employees []EmployeeResponse `json:"employees"`
}

func groupByDepartment(departments []*departmentDatamodel.Department, employees []*Employee) []DepartmentGroup {
	groups := make([]DepartmentGroup, 0, len(departments)+1)
	index := make(map[int64]int, len(departments))
	for _, d := range departments {
		id := d.ID
		index[id] = len(groups)
		groups = append(groups, DepartmentGroup{ID: &id, Name: d.Name, Employees: []EmployeeResponse{}})
	}

	var unassigned []EmployeeResponse
	for _, e := range employees {
		if e.DepartmentID == nil {
			unassigned = append(unassigned, e.ToResponse())
			continue
		}
		if i, ok := index[*e.DepartmentID]; ok {
			groups[i].Employees = append(groups[i].Employees, e.ToResponse())
		}
	}

	if len(unassigned) > 0 {
		groups = append(groups, DepartmentGroup{Name: NoDepartmentLabel, Employees: unassigned})
	}
	return groups
}
