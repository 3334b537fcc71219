package auth

import "strings"

// Role is a closed enumeration of the roles the API recognizes. Route
// gating compares against these constants rather than free-form strings so
// a typo'd role name fails ParseRole instead of silently granting or
// denying access.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleDoctor     Role = "doctor"
	RoleNurse      Role = "nurse"
	RoleUser       Role = "user"
)

// ParseRole normalizes a wire-level role string to a Role. Both
// "super_admin" and "superadmin" map to RoleSuperAdmin; unknown values are
// rejected.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "superadmin", "super_admin":
		return RoleSuperAdmin, true
	case "admin":
		return RoleAdmin, true
	case "doctor":
		return RoleDoctor, true
	case "nurse":
		return RoleNurse, true
	case "user":
		return RoleUser, true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleDoctor, RoleNurse, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
