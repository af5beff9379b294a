package identity

import (
	"context"
	"strings"
)

// Principal is the authenticated caller as resolved from a bearer token and the employee store.
type Principal struct {
	EmployeeID     int64
	Name           string
	Email          string
	Role           Role
	DepartmentID   *int64
	DepartmentName string
}

// hrDepartmentNames lists department names whose managers get organisation-wide HR rights.
var hrDepartmentNames = []string{"hr", "human resources"}

func IsHRDepartment(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range hrDepartmentNames {
		if name == n {
			return true
		}
	}
	return false
}

// HasHRAccess is true for the hr role and for managers of the HR department.
func (p Principal) HasHRAccess() bool {
	if p.Role == RoleHR {
		return true
	}
	return p.Role == RoleManager && p.DepartmentID != nil && IsHRDepartment(p.DepartmentName)
}

func (p Principal) InDepartment(departmentID *int64) bool {
	return p.DepartmentID != nil && departmentID != nil && *p.DepartmentID == *departmentID
}

type ctxKey string

const principalKey ctxKey = "principal"

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
