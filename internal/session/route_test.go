package session

import (
	"testing"

	"github.com/felixgeelhaar/leasehold/internal/api"
)

func TestDashboardRoute(t *testing.T) {
	tests := []struct {
		role api.Role
		want string
	}{
		{api.RoleTenant, "/tenant"},
		{api.RoleOwner, "/owner"},
		{api.RoleAdmin, "/admin"},
		{"guest", "/"},
		{"", "/"},
		{"Owner", "/"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := DashboardRoute(tt.role); got != tt.want {
				t.Errorf("DashboardRoute(%q) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}
}
