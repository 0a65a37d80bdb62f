package models

import (
	"database/sql/driver"
	"fmt"
)

// Role is a forum participant's membership level. The zero value is not a
// valid role.
type Role uint8

const (
	RoleOperator Role = iota + 1
	RoleAdministrator
	RoleParticipant
	RoleViewer
)

// Roles lists every valid role, highest privilege first.
var Roles = []Role{RoleOperator, RoleAdministrator, RoleParticipant, RoleViewer}

func (r Role) String() string {
	switch r {
	case RoleOperator:
		return "Operator"
	case RoleAdministrator:
		return "Administrator"
	case RoleParticipant:
		return "Participant"
	case RoleViewer:
		return "Viewer"
	}
	return ""
}

// ParseRole maps a role name to its Role. Matching is exact.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}

func (r Role) Valid() bool {
	return r.String() != ""
}

// CanManageParticipants reports whether the role may add or remove other
// members of a forum.
func (r Role) CanManageParticipants() bool {
	switch r {
	case RoleOperator, RoleAdministrator:
		return true
	case RoleParticipant, RoleViewer:
		return false
	}
	return false
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, ok := ParseRole(string(b))
	if !ok {
		return fmt.Errorf("invalid role %q", string(b))
	}
	*r = v
	return nil
}

// Value stores the role by name.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", uint8(r))
	}
	return r.String(), nil
}

func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into Role", src)
}
