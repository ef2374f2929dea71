package accounts

import "strings"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsElevated reports whether the role carries administrative rights
func (r UserRole) IsElevated() bool {
	return r == RoleAdmin
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleUser:  0,
		RoleAdmin: 1,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(strings.ToLower(strings.TrimSpace(roleStr)))
	return role, role.IsValid()
}

// CanAssignRole reports whether actor may create or promote an account to target.
// Anonymous callers and plain users may only hand out the default role.
func CanAssignRole(actor *Actor, target UserRole) bool {
	if !target.IsElevated() {
		return true
	}
	return actor != nil && actor.Role.IsElevated()
}
