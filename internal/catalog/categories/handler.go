package categories

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	catalogshared "github.com/odyssey-erp/catalogdesk/internal/catalog/shared"
	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

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

func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ActionRead, rbac.ResourceCategories)).Get("/", h.List)
	r.With(h.rbac.Require(rbac.ActionRead, rbac.ResourceCategories)).Get("/{id}", h.Show)
	r.With(h.rbac.Require(rbac.ActionCreate, rbac.ResourceCategories)).Post("/", h.Create)
	r.With(h.rbac.Require(rbac.ActionUpdate, rbac.ResourceCategories)).Put("/{id}", h.Update)
	r.With(h.rbac.Require(rbac.ActionDelete, rbac.ResourceCategories)).Delete("/{id}", h.Delete)
}

type listResponse struct {
	Categories []Category        `json:"categories"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := shared.PageFromRequest(r)
	filters := catalogshared.ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("search"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}
	categories, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list categories failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Categories: categories,
		Pagination: shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, category)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("create category failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.logger.Error("update category failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete category failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (CategoryInput, bool) {
	var in CategoryInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return in, false
	}
	if err := h.validator.Struct(in); err != nil {
		httpx.RespondError(w, err)
		return in, false
	}
	return in, true
}
