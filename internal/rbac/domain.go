package rbac

import (
	"context"
	"strings"
)

// Role is the closed set of staff roles.
type Role string

// Roles known to the dashboard. RolePending is assigned on self sign-up and
// carries no permissions until a master promotes the account.
const (
	RoleMaster  Role = "master"
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RolePending Role = "pending"
)

// Action is a CRUD verb.
type Action string

// Actions.
const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource names a kind of record managed from the dashboard.
type Resource string

// Resources.
const (
	ResourceProducts      Resource = "products"
	ResourceCategories    Resource = "categories"
	ResourceUsers         Resource = "users"
	ResourceLogs          Resource = "logs"
	ResourceInquiries     Resource = "inquiries"
	ResourceAppUsers      Resource = "app_users"
	ResourceNotifications Resource = "notifications"
	ResourceWhatsNew      Resource = "whats_new"
)

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RoleMaster, RoleAdmin, RoleUser, RolePending}
}

// Actions lists every action.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

// Resources lists every resource.
func Resources() []Resource {
	return []Resource{
		ResourceProducts,
		ResourceCategories,
		ResourceUsers,
		ResourceLogs,
		ResourceInquiries,
		ResourceAppUsers,
		ResourceNotifications,
		ResourceWhatsNew,
	}
}

// Permission pairs an action with the resource it applies to.
type Permission struct {
	Action   Action   `json:"action"`
	Resource Resource `json:"resource"`
}

// String renders the permission as "resource.action".
func (p Permission) String() string {
	return string(p.Resource) + "." + string(p.Action)
}

// ParseRole normalises s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles() {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// ParseAction normalises s and reports whether it names a known action.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Actions() {
		if a == known {
			return a, true
		}
	}
	return "", false
}

// ParseResource normalises s and reports whether it names a known resource.
func ParseResource(s string) (Resource, bool) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Resources() {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Principal describes the authenticated actor.
type Principal interface {
	GetID() string
	GetRole() Role
}

type principalContextKey struct{}

// ContextWithPrincipal stores the actor in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the actor from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok && p != nil
}

// RoleFromContext returns the actor's role, or "" when nobody is signed in.
func RoleFromContext(ctx context.Context) Role {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.GetRole()
	}
	return ""
}
