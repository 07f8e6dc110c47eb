package audithttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

const rateLimit = 10
const rateWindow = time.Minute

// MountRoutes mendaftarkan endpoint activity log dan ekspor CSV.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(rateLimit, rateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.ActionRead, rbac.ResourceLogs))
		r.Get("/logs", h.handleList)
		r.With(limiter).Get("/logs/export.csv", h.handleExport)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if p, ok := rbac.PrincipalFromContext(r.Context()); ok && p.GetID() != "" {
		return "user:" + p.GetID(), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
