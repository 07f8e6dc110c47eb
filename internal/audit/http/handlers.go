package audithttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/catalogdesk/internal/audit"
	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

// LogService defines the business contract for the activity log.
type LogService interface {
	List(ctx context.Context, filters audit.ListFilters) (audit.Page, error)
	Export(ctx context.Context, filters audit.ListFilters) ([]audit.Entry, error)
}

// Handler menangani permintaan activity log.
type Handler struct {
	logger  *slog.Logger
	service LogService
	rbac    rbac.Middleware
}

// NewHandler membuat handler audit baru.
func NewHandler(logger *slog.Logger, service LogService, mw rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: mw}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, err := h.service.List(r.Context(), filters)
	if err != nil {
		if errors.Is(err, audit.ErrInvalidCursor) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid cursor")
			return
		}
		h.handleServerError(w, "list audit logs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.handleServerError(w, "export audit logs", err)
		return
	}
	csvBytes, err := audit.WriteCSV(rows)
	if err != nil {
		h.handleServerError(w, "encode csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"activity-logs.csv\"")
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func parseFilters(r *http.Request) (audit.ListFilters, error) {
	q := r.URL.Query()
	filters := audit.ListFilters{
		Actor:  strings.TrimSpace(q.Get("user")),
		Action: strings.TrimSpace(q.Get("action")),
		Cursor: strings.TrimSpace(q.Get("cursor")),
	}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return audit.ListFilters{}, httpx.ErrValidation
		}
		filters.PageSize = parsed
	}
	return filters, nil
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
