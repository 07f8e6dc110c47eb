package rbac

import (
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
)

// Middleware wires RBAC authorization helpers for HTTP handlers. The
// principal is expected in the request context, placed there by the session
// middleware.
type Middleware struct {
	Logger *slog.Logger
}

// Require ensures the current principal may perform action on resource.
func (m Middleware) Require(action Action, resource Resource) func(http.Handler) http.Handler {
	return m.RequireAll(Permission{Action: action, Resource: resource})
}

// RequireAny ensures the current principal holds at least one of perms.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return m.guard(perms, func(role Role) bool {
		if len(perms) == 0 {
			return true
		}
		for _, p := range perms {
			if HasPermission(role, p.Action, p.Resource) {
				return true
			}
		}
		return false
	})
}

// RequireAll ensures the current principal holds every one of perms.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.guard(perms, func(role Role) bool {
		for _, p := range perms {
			if !HasPermission(role, p.Action, p.Resource) {
				return false
			}
		}
		return true
	})
}

// RequireRole restricts a route to the listed roles, for operations the
// permission table cannot express (role assignment is master-only).
func (m Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return m.guard(nil, func(role Role) bool {
		return containsRole(roles, role)
	})
}

func (m Middleware) guard(perms []Permission, allowed func(Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
				return
			}
			if !allowed(principal.GetRole()) {
				if m.Logger != nil {
					m.Logger.Debug("rbac denied",
						slog.String("user", principal.GetID()),
						slog.String("role", string(principal.GetRole())),
						slog.Any("required", perms),
						slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "your role does not allow this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
