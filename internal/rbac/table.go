package rbac

import "sort"

type permissionSet map[Permission]struct{}

// grants is the dashboard policy. A role missing from the map, or a pair
// missing from a role's set, is denied.
var grants = map[Role]permissionSet{
	RoleMaster: grant(
		on(ResourceProducts, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		on(ResourceCategories, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		on(ResourceUsers, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		on(ResourceLogs, ActionRead),
		on(ResourceInquiries, ActionRead, ActionUpdate),
		on(ResourceAppUsers, ActionRead, ActionUpdate),
		on(ResourceNotifications, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		on(ResourceWhatsNew, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
	),
	RoleAdmin: grant(
		on(ResourceProducts, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		on(ResourceCategories, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		on(ResourceUsers, ActionRead),
		on(ResourceLogs, ActionRead),
		on(ResourceInquiries, ActionRead, ActionUpdate),
		on(ResourceAppUsers, ActionRead, ActionUpdate),
		on(ResourceNotifications, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
		on(ResourceWhatsNew, ActionCreate, ActionRead, ActionUpdate, ActionDelete),
	),
	RoleUser: grant(
		on(ResourceProducts, ActionRead),
		on(ResourceCategories, ActionRead),
		on(ResourceInquiries, ActionRead),
		on(ResourceNotifications, ActionRead),
		on(ResourceWhatsNew, ActionRead),
	),
}

func on(resource Resource, actions ...Action) []Permission {
	perms := make([]Permission, 0, len(actions))
	for _, a := range actions {
		perms = append(perms, Permission{Action: a, Resource: resource})
	}
	return perms
}

func grant(groups ...[]Permission) permissionSet {
	set := make(permissionSet)
	for _, group := range groups {
		for _, p := range group {
			set[p] = struct{}{}
		}
	}
	return set
}

// HasPermission reports whether role may perform action on resource. It does
// no I/O and is safe to call on every request.
func HasPermission(role Role, action Action, resource Resource) bool {
	if role == "" {
		return false
	}
	set, ok := grants[role]
	if !ok {
		return false
	}
	_, ok = set[Permission{Action: action, Resource: resource}]
	return ok
}

// Permissions returns the grants of role sorted by resource then action.
func Permissions(role Role) []Permission {
	set := grants[role]
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool {
		if perms[i].Resource != perms[j].Resource {
			return perms[i].Resource < perms[j].Resource
		}
		return perms[i].Action < perms[j].Action
	})
	return perms
}
