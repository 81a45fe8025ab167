package session

import "github.com/felixgeelhaar/leasehold/internal/api"

// HomeRoute is where users without a role-specific dashboard land.
const HomeRoute = "/"

var dashboardRoutes = map[api.Role]string{
	api.RoleTenant: "/tenant",
	api.RoleOwner:  "/owner",
	api.RoleAdmin:  "/admin",
}

// DashboardRoute maps a role to its dashboard. Unknown or empty roles map to "/".
func DashboardRoute(role api.Role) string {
	if route, ok := dashboardRoutes[role]; ok {
		return route
	}
	return HomeRoute
}
