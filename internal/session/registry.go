package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Handle pairs the manager of one browser session with its notice queue.
type Handle struct {
	Manager *Manager
	Outbox  *Outbox

	store      Store
	terminated bool
}

// RegistryConfig carries the dependencies shared by every managed session.
type RegistryConfig struct {
	NewStore      func(sessionID string) Store
	Directory     Directory
	Authenticator Authenticator
	Logger        *slog.Logger
	Metrics       *Metrics
	LogoutDelay   time.Duration
	Schedule      func(d time.Duration, fn func())
}

// Registry holds one Manager per browser session id.
type Registry struct {
	cfg    RegistryConfig
	logger *slog.Logger

	mu      sync.Mutex
	handles map[string]*Handle
}

// NewRegistry constructs an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{cfg: cfg, logger: logger, handles: make(map[string]*Handle)}
}

// Acquire returns the handle for id, creating and restoring it when missing.
func (r *Registry) Acquire(ctx context.Context, id string) (*Handle, error) {
	r.mu.Lock()
	h, ok := r.handles[id]
	if !ok {
		h = r.build(id)
		r.handles[id] = h
	}
	r.mu.Unlock()
	if !ok {
		if _, err := h.Manager.Restore(ctx); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Lookup returns the handle for id. A missing handle is restored from the
// store; nothing is registered when the store holds no record.
func (r *Registry) Lookup(ctx context.Context, id string) (*Handle, bool, error) {
	r.mu.Lock()
	h, ok := r.handles[id]
	r.mu.Unlock()
	if ok {
		return h, true, nil
	}

	candidate := r.build(id)
	restored, err := candidate.Manager.Restore(ctx)
	if err != nil || !restored {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.handles[id]; ok {
		return existing, true, nil
	}
	r.handles[id] = candidate
	return candidate, true, nil
}

// Release forgets the handle for id.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	delete(r.handles, id)
	r.mu.Unlock()
}

// Len reports the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// End logs out the session id, if any, and forgets its handle.
func (r *Registry) End(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	h, ok, err := r.Lookup(ctx, id)
	if err != nil {
		return err
	}
	defer r.Release(id)
	if !ok {
		return nil
	}
	return h.Manager.Logout(ctx)
}

// Sweep triggers the on-resume hook of every live session. Sessions that were
// terminated, or whose stored record expired, are evicted. It returns how many
// passes were started.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	live := make(map[string]*Handle, len(r.handles))
	for id, h := range r.handles {
		if h.terminated || !h.Manager.State().Authenticated() {
			delete(r.handles, id)
			continue
		}
		live[id] = h
	}
	r.mu.Unlock()

	started := 0
	for id, h := range live {
		_, ok, err := h.store.Load(ctx)
		if err != nil {
			r.logger.WarnContext(ctx, "session sweep load failed", slog.String("session", id), slog.Any("error", err))
			continue
		}
		if !ok {
			r.evict(id, h)
			r.logger.DebugContext(ctx, "session expired, evicted", slog.String("session", id))
			continue
		}
		if h.Manager.Resume(ctx) {
			started++
		}
	}
	return started
}

// evict drops h unless id was re-registered with another handle meanwhile.
func (r *Registry) evict(id string, h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handles[id] == h {
		delete(r.handles, id)
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(ctx); n > 0 {
				r.logger.DebugContext(ctx, "session sweep", slog.Int("started", n))
			}
		}
	}
}

func (r *Registry) build(id string) *Handle {
	h := &Handle{Outbox: &Outbox{}, store: r.cfg.NewStore(id)}
	h.Manager = NewManager(Config{
		Store:         h.store,
		Directory:     r.cfg.Directory,
		Authenticator: r.cfg.Authenticator,
		Notifier:      Notifiers{h.Outbox, LogNotifier{Logger: r.logger}},
		Navigator: NavigatorFunc(func(ctx context.Context) {
			r.mu.Lock()
			h.terminated = true
			r.mu.Unlock()
			r.logger.InfoContext(ctx, "session ended, login required")
		}),
		Logger:      r.logger,
		Metrics:     r.cfg.Metrics,
		LogoutDelay: r.cfg.LogoutDelay,
		Schedule:    r.cfg.Schedule,
	})
	return h
}

// Terminated reports whether the session was logged out.
func (r *Registry) Terminated(h *Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return h.terminated
}
