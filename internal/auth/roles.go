package auth

// Role represents a user role.
type Role string

const (
	// RoleViewer may read the ledger and download exports.
	RoleViewer Role = "viewer"
	// RoleOwner may also record, delete and import sales.
	RoleOwner Role = "owner"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleViewer, RoleOwner:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleViewer:
		return 1
	case RoleOwner:
		return 2
	default:
		return 0
	}
}
