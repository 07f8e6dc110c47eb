package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/catalogdesk/internal/announcements"
	"github.com/odyssey-erp/catalogdesk/internal/appusers"
	audithttp "github.com/odyssey-erp/catalogdesk/internal/audit/http"
	"github.com/odyssey-erp/catalogdesk/internal/auth"
	"github.com/odyssey-erp/catalogdesk/internal/catalog/categories"
	"github.com/odyssey-erp/catalogdesk/internal/catalog/products"
	"github.com/odyssey-erp/catalogdesk/internal/dashboard"
	"github.com/odyssey-erp/catalogdesk/internal/inquiries"
	"github.com/odyssey-erp/catalogdesk/internal/observability"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/session"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
	"github.com/odyssey-erp/catalogdesk/internal/users"
	"github.com/odyssey-erp/catalogdesk/jobs"
)

// APIPrefix is where every JSON endpoint is mounted.
const APIPrefix = "/api"

// PublicInquiryPath is the unauthenticated inquiry submission endpoint.
const PublicInquiryPath = APIPrefix + "/inquiries"

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Registry       *session.Registry

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	CategoriesHandler    *categories.Handler
	ProductsHandler      *products.Handler
	AppUsersHandler      *appusers.Handler
	InquiriesHandler     *inquiries.Handler
	NotificationsHandler *announcements.Handler
	WhatsNewHandler      *announcements.Handler
	AuditHandler         *audithttp.Handler
	DashboardHandler     *dashboard.Handler
	PermissionsHandler   *rbac.PermissionsHandler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with catalogdesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route(APIPrefix, func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Registry:       params.Registry,
			Metrics:        params.Metrics,
			CSRFExempt:     []string{PublicInquiryPath},
		}) {
			r.Use(mw)
		}

		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.PermissionsHandler != nil {
			params.PermissionsHandler.MountRoutes(r)
		}
		if params.DashboardHandler != nil {
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.CategoriesHandler != nil {
			r.Route("/categories", params.CategoriesHandler.MountRoutes)
		}
		if params.ProductsHandler != nil {
			r.Route("/products", params.ProductsHandler.MountRoutes)
		}
		if params.AppUsersHandler != nil {
			r.Route("/app-users", params.AppUsersHandler.MountRoutes)
		}
		if params.InquiriesHandler != nil {
			r.Route("/inquiries", func(r chi.Router) {
				params.InquiriesHandler.MountPublicRoutes(r)
				params.InquiriesHandler.MountRoutes(r)
			})
		}
		if params.NotificationsHandler != nil {
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		}
		if params.WhatsNewHandler != nil {
			r.Route("/whats-new", params.WhatsNewHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(rbac.Middleware{Logger: params.Logger}.Require(rbac.ActionRead, rbac.ResourceLogs))
				r.Route("/jobs", params.JobHandler.MountRoutes)
			})
		}
	})

	return r
}
