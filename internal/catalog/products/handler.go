package products

import (
	"log/slog"
	"net/http"
	"strconv"

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
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ActionRead, rbac.ResourceProducts))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.With(h.rbac.Require(rbac.ActionCreate, rbac.ResourceProducts)).Post("/", h.Create)
	r.With(h.rbac.Require(rbac.ActionUpdate, rbac.ResourceProducts)).Put("/{id}", h.Update)
	r.With(h.rbac.Require(rbac.ActionDelete, rbac.ResourceProducts)).Delete("/{id}", h.Delete)
}

type listResponse struct {
	Products   []Product         `json:"products"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := shared.PageFromRequest(r)
	q := r.URL.Query()
	filters := catalogshared.ListFilters{
		Page:       page,
		Limit:      limit,
		Search:     q.Get("search"),
		SortBy:     q.Get("sort"),
		SortDir:    q.Get("dir"),
		CategoryID: q.Get("category"),
	}
	if raw := q.Get("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "featured must be a boolean")
			return
		}
		filters.Featured = &featured
	}

	products, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Products:   products,
		Pagination: shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.logger.Error("create product failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	updated, err := h.service.Update(r.Context(), id, form)
	if err != nil {
		h.logger.Error("update product failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete product failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (ProductForm, bool) {
	var form ProductForm
	if err := httpx.DecodeJSON(w, r, &form); err != nil {
		httpx.RespondError(w, err)
		return form, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.RespondError(w, err)
		return form, false
	}
	return form, true
}
