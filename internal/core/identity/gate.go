package identity

import "github.com/frahmantamala/leaveflow/internal"

type Capability string

const (
	CapCreateLeave          Capability = "create_leave"
	CapViewOwnLeaves        Capability = "view_own_leaves"
	CapViewDepartmentLeaves Capability = "view_department_leaves"
	CapDecideLeave          Capability = "decide_leave"
	CapViewAllLeaves        Capability = "view_all_leaves"
	CapManageEmployees      Capability = "manage_employees"
	CapManageDepartments    Capability = "manage_departments"
	CapViewStatistics       Capability = "view_statistics"
	CapRecompute            Capability = "recompute_entitlements"
)

// Allows reports whether p holds capability c, independent of any particular record.
func Allows(p Principal, c Capability) bool {
	if !p.Role.Valid() {
		return false
	}

	switch c {
	case CapCreateLeave, CapViewOwnLeaves:
		return true
	case CapViewDepartmentLeaves, CapDecideLeave:
		return p.Role == RoleManager || p.HasHRAccess()
	case CapViewAllLeaves, CapManageEmployees, CapManageDepartments, CapViewStatistics, CapRecompute:
		return p.HasHRAccess()
	}
	return false
}

// Require returns ErrInsufficientRole when p lacks c.
func Require(p Principal, c Capability) error {
	if !Allows(p, c) {
		return internal.ErrInsufficientRole
	}
	return nil
}

// AuthorizeDecision checks that p may approve or reject a request owned by ownerID in ownerDepartment.
func AuthorizeDecision(p Principal, ownerID int64, ownerDepartment *int64) error {
	if err := Require(p, CapDecideLeave); err != nil {
		return err
	}
	if p.EmployeeID == ownerID {
		return internal.ErrSelfDecision
	}
	if p.HasHRAccess() {
		return nil
	}
	if !p.InDepartment(ownerDepartment) {
		return internal.ErrOutOfScope
	}
	return nil
}

// LeaveScope is the set of requests a principal may list.
type LeaveScope struct {
	All          bool
	DepartmentID int64
}

// ScopeFor resolves which leave requests p may list outside their own.
func ScopeFor(p Principal) (LeaveScope, error) {
	if p.HasHRAccess() {
		return LeaveScope{All: true}, nil
	}
	if err := Require(p, CapViewDepartmentLeaves); err != nil {
		return LeaveScope{}, err
	}
	if p.DepartmentID == nil {
		return LeaveScope{}, internal.ErrNoDepartment
	}
	return LeaveScope{DepartmentID: *p.DepartmentID}, nil
}
