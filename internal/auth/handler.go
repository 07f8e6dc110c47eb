package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/session"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// HandlerConfig groups the collaborators of Handler.
type HandlerConfig struct {
	Logger    *slog.Logger
	Service   *Service
	Registry  *session.Registry
	Sessions  *shared.SessionManager
	CSRF      *shared.CSRFManager
	LoginPath string
	// LoginRate caps login attempts per client IP per minute. Zero disables
	// the limiter.
	LoginRate int
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	registry       *session.Registry
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
	loginPath      string
	loginRate      int
}

// NewHandler constructs a Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Handler{
		logger:         logger,
		service:        cfg.Service,
		registry:       cfg.Registry,
		sessionManager: cfg.Sessions,
		csrfManager:    cfg.CSRF,
		validator:      validator.New(),
		loginPath:      loginPath,
		loginRate:      cfg.LoginRate,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.loginRate > 0 {
			r.Use(httprate.Limit(h.loginRate, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Post("/login", h.handleLogin)
		r.Post("/signup", h.handleSignup)
	})
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.handleSession)
	r.Post("/session/resume", h.handleResume)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	State         session.State     `json:"state"`
	User          *session.Record   `json:"user,omitempty"`
	Permissions   []rbac.Permission `json:"permissions"`
	CSRFToken     string            `json:"csrf_token,omitempty"`
	Outcome       session.Outcome   `json:"outcome,omitempty"`
	Notices       []session.Notice  `json:"notices"`
	Redirect      string            `json:"redirect,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	var req loginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	previousID := sess.ID
	h.sessionManager.Rotate(sess)
	handle, err := h.registry.Acquire(ctx, sess.ID)
	if err != nil {
		h.logger.Error("acquire session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if previousID != sess.ID {
		if err := h.registry.End(ctx, previousID); err != nil {
			h.logger.Warn("end previous session", slog.Any("error", err))
		}
	}
	rec, err := handle.Manager.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.registry.Release(sess.ID)
		if !errors.Is(err, shared.ErrInvalidCredentials) && !errors.Is(err, shared.ErrAccountDisabled) {
			h.logger.Error("login", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(ctx, sess.ID, rec.UID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	token, err := h.csrfManager.EnsureToken(ctx, sess)
	if err != nil {
		h.logger.Error("issue csrf token", slog.Any("error", err))
	}
	h.logger.Info("user signed in", slog.String("uid", rec.UID), slog.String("role", string(rec.Role)))

	httpx.JSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		State:         handle.Manager.State(),
		User:          &rec,
		Permissions:   rbac.Permissions(rec.Role),
		CSRFToken:     token,
		Notices:       handle.Outbox.Drain(),
	})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var input SignupInput
	if err := httpx.DecodeJSON(w, r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.Signup(r.Context(), input)
	if err != nil {
		if !errors.Is(err, httpx.ErrDuplicate) {
			h.logger.Error("signup", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	if sess != nil {
		handle, ok, err := h.registry.Lookup(ctx, sess.ID)
		if err != nil {
			h.logger.Warn("lookup session for logout", slog.Any("error", err))
		}
		if ok {
			if err := handle.Manager.Logout(ctx); err != nil {
				h.logger.Warn("logout", slog.Any("error", err))
			}
			h.registry.Release(sess.ID)
		}
		if err := h.service.RemoveSession(ctx, sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{
		State:       session.StateUnauthenticated,
		Permissions: []rbac.Permission{},
		Notices:     []session.Notice{},
		Redirect:    h.loginPath,
	})
}

// handleSession reports the current record together with any queued notices.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	token, err := h.csrfManager.EnsureToken(ctx, sess)
	if err != nil {
		h.logger.Error("issue csrf token", slog.Any("error", err))
	}

	resp := sessionResponse{
		State:       session.StateUnauthenticated,
		Permissions: []rbac.Permission{},
		CSRFToken:   token,
		Notices:     []session.Notice{},
	}
	handle, ok := h.lookup(r)
	if !ok {
		httpx.JSON(w, http.StatusOK, resp)
		return
	}
	h.fill(&resp, handle, sess.ID)
	httpx.JSON(w, http.StatusOK, resp)
}

// handleResume runs a reconciliation pass and returns its outcome. A session
// that is already gone answers 401 with the login redirect.
func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	handle, ok := h.lookup(r)
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, sessionResponse{
			State:       session.StateUnauthenticated,
			Permissions: []rbac.Permission{},
			Notices:     []session.Notice{},
			Redirect:    h.loginPath,
		})
		return
	}

	outcome, err := handle.Manager.Reconcile(ctx)
	if err != nil && !errors.Is(err, session.ErrReconcileSuppressed) {
		h.logger.Error("reconcile session", slog.Any("error", err))
	}

	resp := sessionResponse{Outcome: outcome}
	h.fill(&resp, handle, sess.ID)
	status := http.StatusOK
	if !resp.Authenticated {
		status = http.StatusUnauthorized
	}
	httpx.JSON(w, status, resp)
}

func (h *Handler) lookup(r *http.Request) (*session.Handle, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, false
	}
	handle, ok, err := h.registry.Lookup(r.Context(), sess.ID)
	if err != nil {
		h.logger.Warn("lookup session", slog.Any("error", err))
		return nil, false
	}
	return handle, ok
}

// fill copies the handle state into resp. Terminated sessions are released
// once their last notices have been handed out.
func (h *Handler) fill(resp *sessionResponse, handle *session.Handle, id string) {
	resp.State = handle.Manager.State()
	resp.Notices = handle.Outbox.Drain()
	resp.Permissions = []rbac.Permission{}
	if rec, ok := handle.Manager.Current(); ok {
		resp.Authenticated = true
		resp.User = &rec
		resp.Permissions = rbac.Permissions(rec.Role)
		return
	}
	resp.Redirect = h.loginPath
	if h.registry.Terminated(handle) {
		h.registry.Release(id)
	}
}
