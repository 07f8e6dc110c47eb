package announcements

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// Handler serves CRUD endpoints for one announcement kind.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers routes gated on the resource of the service kind.
func (h *Handler) MountRoutes(r chi.Router) {
	resource := h.service.Kind().Resource()
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ActionRead, resource))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.With(h.rbac.Require(rbac.ActionCreate, resource)).Post("/", h.create)
	r.With(h.rbac.Require(rbac.ActionUpdate, resource)).Put("/{id}", h.update)
	r.With(h.rbac.Require(rbac.ActionDelete, resource)).Delete("/{id}", h.delete)
}

type listResponse struct {
	Items      []Announcement    `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	items, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list announcements failed", "kind", h.service.Kind(), "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Items: items, Pagination: pagination})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var input Input
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, err)
		return Input{}, false
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, err)
		return Input{}, false
	}
	return input, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}
	item, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create announcement failed", "kind", h.service.Kind(), "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}
	item, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
