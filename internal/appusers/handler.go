package appusers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// Handler serves app user endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers app user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ActionRead, rbac.ResourceAppUsers)).Get("/", h.list)
	r.With(h.rbac.Require(rbac.ActionUpdate, rbac.ResourceAppUsers)).Patch("/{id}", h.update)
}

type listResponse struct {
	AppUsers   []AppUser         `json:"app_users"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	filter := ListFilter{
		Search:  strings.TrimSpace(r.URL.Query().Get("q")),
		Page:    page,
		PerPage: perPage,
	}
	if raw := r.URL.Query().Get("authenticated"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "authenticated must be a boolean")
			return
		}
		filter.Authenticated = &v
	}
	users, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list app users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{AppUsers: users, Pagination: pagination})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.SetAuthenticated(r.Context(), chi.URLParam(r, "id"), *input.IsAuthenticated)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
