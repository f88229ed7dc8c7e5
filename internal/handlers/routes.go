package handlers

import "github.com/ukydev/schoolbus-tracker/internal/models"

// Routes served by the tracker
const (
	LoginPath           = "/"
	LoginSubmitPath     = "/login"
	APILoginPath        = "/api/login"
	LogoutPath          = "/logout"
	ParentDashboardPath = "/parent-dashboard"
	AdminDashboardPath  = "/admin-dashboard"
	ParentStreamPath    = "/ws/parent-dashboard"
	AdminStreamPath     = "/ws/admin-dashboard"
	HealthPath          = "/health"
)

// DashboardPath returns where a role lands after signing in
func DashboardPath(role models.Role) string {
	if role == models.RoleAdmin {
		return AdminDashboardPath
	}
	return ParentDashboardPath
}
