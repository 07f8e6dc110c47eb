package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
)

// PermissionsHandler exposes the caller's grants and route checks so the
// dashboard can hide what the role cannot use.
type PermissionsHandler struct {
	logger *slog.Logger
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger) *PermissionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionsHandler{logger: logger}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/permissions", h.listPermissions)
	r.Get("/routes/access", h.routeAccess)
}

type permissionsResponse struct {
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	role := RoleFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, permissionsResponse{Role: role, Permissions: Permissions(role)})
}

type routeAccessResponse struct {
	Path    string `json:"path"`
	Allowed bool   `json:"allowed"`
}

func (h *PermissionsHandler) routeAccess(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "path is required")
		return
	}
	role := RoleFromContext(r.Context())
	allowed := CanAccessRoute(role, path)
	if !allowed {
		h.logger.DebugContext(r.Context(), "route access denied", slog.String("role", string(role)), slog.String("path", path))
	}
	httpx.JSON(w, http.StatusOK, routeAccessResponse{Path: path, Allowed: allowed})
}
