package profile

import "fmt"

// Role is the fixed tier assigned to an account at creation.
// It never changes for the lifetime of the account and drives
// every authorization decision in the system.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleTeam     Role = "team"
	RoleCustomer Role = "customer"
)

// ParseRole converts a raw string (e.g. from a JWT claim or request body)
// into a Role. Unknown values are rejected rather than passed through.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleTeam:
		return RoleTeam, nil
	case RoleCustomer:
		return RoleCustomer, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTeam, RoleCustomer:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
