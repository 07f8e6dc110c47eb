package rbac

import "strings"

var (
	staff    = []Role{RoleMaster, RoleAdmin, RoleUser}
	managers = []Role{RoleMaster, RoleAdmin}
	masters  = []Role{RoleMaster}
)

// routeAccess gates dashboard pages. Resource-level checks still go through
// HasPermission.
var routeAccess = map[string][]Role{
	"/dashboard":                 staff,
	"/dashboard/products":        staff,
	"/dashboard/products/new":    managers,
	"/dashboard/products/edit":   managers,
	"/dashboard/categories":      staff,
	"/dashboard/categories/new":  managers,
	"/dashboard/categories/edit": managers,
	"/dashboard/users":           masters,
	"/dashboard/users/edit":      masters,
	"/dashboard/app-users":       managers,
	"/dashboard/logs":            managers,
	"/dashboard/inquiries":       staff,
	"/dashboard/notifications":   managers,
	"/dashboard/whats-new":       managers,
}

// CanAccessRoute reports whether role may open route. An exact entry wins;
// otherwise the longest prefix ending on a path segment decides, so
// "/dashboardx" does not match "/dashboard". Unknown routes are denied.
func CanAccessRoute(role Role, route string) bool {
	if role == "" {
		return false
	}
	if roles, ok := routeAccess[route]; ok {
		return containsRole(roles, role)
	}
	best := ""
	for prefix := range routeAccess {
		if hasSegmentPrefix(route, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return false
	}
	return containsRole(routeAccess[best], role)
}

func containsRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func hasSegmentPrefix(route, prefix string) bool {
	if !strings.HasPrefix(route, prefix) {
		return false
	}
	return len(route) == len(prefix) || route[len(prefix)] == '/'
}
