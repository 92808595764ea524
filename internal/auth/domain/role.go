package domain

import "strings"

// Role is the single role a user holds within their tenant.
type Role string

const (
	RoleUnknown      Role = ""
	RoleOwner        Role = "OWNER"
	RoleAdmin        Role = "ADMIN"
	RoleManager      Role = "MANAGER"
	RoleStaff        Role = "STAFF"
	RoleOptometrist  Role = "OPTOMETRIST"
	RoleReceptionist Role = "RECEPTIONIST"
)

var knownRoles = map[Role]struct{}{
	RoleOwner:        {},
	RoleAdmin:        {},
	RoleManager:      {},
	RoleStaff:        {},
	RoleOptometrist:  {},
	RoleReceptionist: {},
}

// ParseRole is case-insensitive. Unrecognized values yield RoleUnknown.
func ParseRole(raw string) Role {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := knownRoles[role]; !ok {
		return RoleUnknown
	}
	return role
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "UNKNOWN"
	}
	return string(r)
}

// HasChainWideScope reports whether the role sees every store of its tenant
// without explicit assignment.
func (r Role) HasChainWideScope() bool {
	return r == RoleOwner || r == RoleAdmin
}
