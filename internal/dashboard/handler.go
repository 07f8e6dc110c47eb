package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

// Handler serves the dashboard summary.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers GET /stats. Every signed-in role may call it; the
// body is trimmed to what the role can read.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stats", h.stats)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	stats, err := h.service.Stats(r.Context(), principal.GetRole())
	if err != nil {
		h.logger.Error("dashboard stats failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
