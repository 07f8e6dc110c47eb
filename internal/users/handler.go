package users

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// Handler manages user management endpoints.
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

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ActionRead, rbac.ResourceUsers))
		r.Get("/", h.listUsers)
		r.Get("/{id}", h.getUser)
	})
	r.With(h.rbac.Require(rbac.ActionUpdate, rbac.ResourceUsers)).Patch("/{id}", h.updateUser)
	r.With(h.rbac.Require(rbac.ActionDelete, rbac.ResourceUsers)).Delete("/{id}", h.deleteUser)
}

type listResponse struct {
	Users      []User            `json:"users"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	filter := ListFilter{
		Search:  strings.TrimSpace(r.URL.Query().Get("q")),
		Page:    page,
		PerPage: perPage,
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, ok := rbac.ParseRole(raw)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
			return
		}
		filter.Role = role
	}
	users, pagination, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Users: users, Pagination: pagination})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("user updated", slog.String("user_id", user.ID), slog.String("role", string(user.Role)), slog.String("status", string(user.Status)))
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
