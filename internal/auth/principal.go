package auth

import "fmt"

// Role represents a caller's authorization level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ValidRoles contains all valid role values.
var ValidRoles = map[Role]bool{
	RoleAdmin:  true,
	RoleEditor: true,
	RoleViewer: true,
}

// rank orders roles for RequireRole checks.
var rank = map[Role]int{
	RoleViewer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// Allows reports whether r is at least as privileged as min.
func (r Role) Allows(min Role) bool {
	return rank[r] >= rank[min] && rank[r] > 0
}

// Principal is the subject a token is issued for.
type Principal struct {
	UserID   string `json:"user_id" validate:"required"`
	Username string `json:"username" validate:"required"`
	Role     Role   `json:"role" validate:"required"`
}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !ValidRoles[r] {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
