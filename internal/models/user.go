package models

// Role represents the dashboard a user signs in to
type Role string

const (
	RoleParent Role = "parent"
	RoleAdmin  Role = "admin"
)

// LoginRequest represents a login submission. Only the role decides where the
// user lands; username and password just have to be present.
type LoginRequest struct {
	Role     Role   `json:"role" form:"role" validate:"omitempty,oneof=parent admin"`
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token    string `json:"token"`
	Role     Role   `json:"role"`
	Redirect string `json:"redirect"`
}

// Session is what survives a login: the password is dropped on the floor.
type Session struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleParent, RoleAdmin:
		return true
	default:
		return false
	}
}

// RoleOrDefault returns the role, or RoleParent when none was selected.
func RoleOrDefault(role Role) Role {
	if role == "" {
		return RoleParent
	}
	return role
}
