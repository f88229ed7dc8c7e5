package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"parent role", RoleParent, true},
		{"admin role", RoleAdmin, true},
		{"manager role", "manager", false},
		{"uppercase admin", "ADMIN", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestRoleOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected Role
	}{
		{"empty falls back to parent", "", RoleParent},
		{"parent kept", RoleParent, RoleParent},
		{"admin kept", RoleAdmin, RoleAdmin},
		{"unknown kept for validation", "driver", "driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleOrDefault(tt.role); got != tt.expected {
				t.Errorf("RoleOrDefault(%q) = %q, want %q", tt.role, got, tt.expected)
			}
		})
	}
}
