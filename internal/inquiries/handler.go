package inquiries

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// IdempotencyHeader carries the optional client retry key.
const IdempotencyHeader = "Idempotency-Key"

// Handler serves inquiry endpoints.
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

// MountPublicRoutes registers the unauthenticated submission endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/", h.submit)
}

// MountRoutes registers staff routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ActionRead, rbac.ResourceInquiries)).Get("/", h.list)
	r.With(h.rbac.Require(rbac.ActionUpdate, rbac.ResourceInquiries)).Patch("/{id}", h.updateStatus)
}

type submitResponse struct {
	Message string  `json:"message"`
	Inquiry Inquiry `json:"inquiry"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var input SubmitInput
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	created, err := h.service.Submit(r.Context(), input, r.Header.Get(IdempotencyHeader))
	if err != nil {
		if !errors.Is(err, shared.ErrIdempotencyConflict) {
			h.logger.Error("submit inquiry failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, submitResponse{Message: "Inquiry submitted successfully", Inquiry: created})
}

type listResponse struct {
	Inquiries  []Inquiry         `json:"inquiries"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r)
	filter := ListFilter{Page: page, PerPage: perPage}
	switch raw := Status(r.URL.Query().Get("status")); raw {
	case "", StatusOpen, StatusResolved:
		filter.Status = raw
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status")
		return
	}
	items, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list inquiries failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Inquiries: items, Pagination: pagination})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var input StatusInput
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), Status(input.Status))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
