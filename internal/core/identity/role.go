package identity

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/frahmantamala/leaveflow/internal"
)

// Role is the closed set of employee roles. The zero value is not a valid role.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
)

func Roles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleHR}
}

// ParseRole accepts a role name in any case and rejects anything outside the enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", internal.ErrInvalidRole
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("refusing to store invalid role %q", string(r))
	}
	return string(r), nil
}

func (r *Role) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return fmt.Errorf("invalid role %q in store", s)
	}
	*r = parsed
	return nil
}
