// Copyright (c) 2026 GalleManga. All rights reserved.

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Catalog and wallet administration
	RoleAdmin UserRole = "admin"

	// Default role for registered readers
	RoleUser UserRole = "user"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 40
	case RoleUser:
		return 10
	default:
		return 0
	}
}

// # Principal

// Principal is the immutable identity resolved for a request.
type Principal struct {
	UserID   string
	Username string
	Role     UserRole
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
