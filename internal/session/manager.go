package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultLogoutDelay is the pause between the disabled notice and the forced
// logout.
const DefaultLogoutDelay = 3 * time.Second

const terminateTimeout = 5 * time.Second

var (
	// ErrReconcileSuppressed is returned when a pass cannot start because the
	// session is not fresh or another pass or a logout is in flight.
	ErrReconcileSuppressed = errors.New("session: reconciliation suppressed")
	// ErrNotAuthenticated is returned by operations that need a signed-in record.
	ErrNotAuthenticated = errors.New("session: not authenticated")
)

// Config wires the collaborators of a Manager.
type Config struct {
	Store         Store
	Directory     Directory
	Authenticator Authenticator
	Notifier      Notifier
	Navigator     Navigator
	Logger        *slog.Logger
	Metrics       *Metrics
	LogoutDelay   time.Duration
	// Schedule runs fn after d. Defaults to time.AfterFunc.
	Schedule func(d time.Duration, fn func())
}

// Manager owns the session of a single client. All methods are safe for
// concurrent use.
type Manager struct {
	store     Store
	directory Directory
	auth      Authenticator
	notifier  Notifier
	navigator Navigator
	logger    *slog.Logger
	metrics   *Metrics
	delay     time.Duration
	schedule  func(time.Duration, func())

	mu          sync.Mutex
	state       State
	record      Record
	reconciling bool
	loggingOut  bool
	// generation changes on every login and logout so results of work started
	// under an earlier login are discarded.
	generation uint64
}

// NewManager constructs a Manager in the unauthenticated state.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		store:     cfg.Store,
		directory: cfg.Directory,
		auth:      cfg.Authenticator,
		notifier:  cfg.Notifier,
		navigator: cfg.Navigator,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		delay:     cfg.LogoutDelay,
		schedule:  cfg.Schedule,
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.delay <= 0 {
		m.delay = DefaultLogoutDelay
	}
	if m.schedule == nil {
		m.schedule = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	if m.notifier == nil {
		m.notifier = Notifiers(nil)
	}
	if m.navigator == nil {
		m.navigator = NavigatorFunc(func(context.Context) {})
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the held record when the session is authenticated.
func (m *Manager) Current() (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Authenticated() {
		return Record{}, false
	}
	return m.record, true
}

// Restore rehydrates the session from the store. It is a no-op when the
// manager already holds a record or the store is empty.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	rec, ok, err := m.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("session: restore: %w", err)
	}
	if !ok {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateUnauthenticated {
		return true, nil
	}
	m.record = rec
	m.state = StateFresh
	return true, nil
}

// Login verifies credentials, persists the record and enters the fresh state.
func (m *Manager) Login(ctx context.Context, email, password string) (Record, error) {
	rec, err := m.auth.Authenticate(ctx, email, password)
	if err != nil {
		return Record{}, err
	}
	if err := m.store.Save(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("session: persist record: %w", err)
	}

	m.mu.Lock()
	m.generation++
	m.record = rec
	m.state = StateFresh
	m.loggingOut = false
	m.mu.Unlock()
	return rec, nil
}

// Logout clears the session and redirects to the login view. Calling it on an
// unauthenticated session or while a logout is in flight does nothing.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if !m.state.Authenticated() || m.loggingOut {
		m.mu.Unlock()
		return nil
	}
	m.loggingOut = true
	m.generation++
	m.mu.Unlock()

	return m.finishLogout(ctx)
}

func (m *Manager) finishLogout(ctx context.Context) error {
	err := m.store.Clear(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "session store clear failed", slog.Any("error", err))
	}

	m.mu.Lock()
	m.state = StateUnauthenticated
	m.record = Record{}
	m.loggingOut = false
	m.mu.Unlock()

	m.navigator.RedirectToLogin(ctx)
	if err != nil {
		return fmt.Errorf("session: clear store: %w", err)
	}
	return nil
}

type pass struct {
	held       Record
	generation uint64
}

// begin claims the reconciliation guard. It fails without side effects when
// a pass cannot start.
func (m *Manager) begin() (pass, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateFresh || m.reconciling || m.loggingOut {
		return pass{}, false
	}
	m.reconciling = true
	m.state = StateCheckPending
	return pass{held: m.record, generation: m.generation}, true
}

// Reconcile compares the held record with the authoritative one and applies
// role changes or forced termination. Read failures are logged and leave the
// session untouched.
func (m *Manager) Reconcile(ctx context.Context) (Outcome, error) {
	p, ok := m.begin()
	if !ok {
		m.metrics.observe(OutcomeSkipped)
		return OutcomeSkipped, ErrReconcileSuppressed
	}
	outcome := m.run(ctx, p)
	return outcome, nil
}

// Resume is the on-resume hook. It starts a pass in the background and
// reports whether one was started.
func (m *Manager) Resume(ctx context.Context) bool {
	p, ok := m.begin()
	if !ok {
		return false
	}
	go m.run(context.WithoutCancel(ctx), p)
	return true
}

func (m *Manager) run(ctx context.Context, p pass) Outcome {
	latest, err := m.directory.LookupByEmail(ctx, p.held.Email)

	m.mu.Lock()
	m.reconciling = false
	if p.generation != m.generation {
		m.mu.Unlock()
		m.metrics.observe(OutcomeDiscarded)
		return OutcomeDiscarded
	}
	if err != nil {
		m.state = StateFresh
		m.mu.Unlock()
		m.logger.WarnContext(ctx, "session reconciliation read failed",
			slog.String("email", p.held.Email),
			slog.Any("error", err),
		)
		m.metrics.observe(OutcomeFetchFailed)
		return OutcomeFetchFailed
	}

	current := m.record
	roleChanged := latest.Role != current.Role
	statusChanged := latest.Status != current.Status
	if !roleChanged && !statusChanged {
		m.state = StateFresh
		m.mu.Unlock()
		m.metrics.observe(OutcomeUnchanged)
		return OutcomeUnchanged
	}

	updated := current
	updated.Role = latest.Role
	updated.Status = latest.Status
	m.record = updated
	disabled := updated.Status == StatusDisabled
	if disabled {
		m.state = StateTerminating
	} else {
		m.state = StateFresh
	}
	m.mu.Unlock()

	if err := m.store.Save(ctx, updated); err != nil {
		m.logger.WarnContext(ctx, "session store save failed", slog.Any("error", err))
	}

	var outcome Outcome
	switch {
	case disabled:
		outcome = OutcomeTerminating
		m.notifier.Notify(ctx, DisabledNotice())
		m.logger.InfoContext(ctx, "session account disabled, scheduling logout",
			slog.String("uid", updated.UID),
			slog.Duration("delay", m.delay),
		)
		gen := p.generation
		m.schedule(m.delay, func() { m.terminate(ctx, gen) })
	case roleChanged:
		outcome = OutcomeRoleChanged
		m.notifier.Notify(ctx, RoleChangedNotice(updated.Role))
		m.logger.InfoContext(ctx, "session role updated",
			slog.String("uid", updated.UID),
			slog.String("from", string(current.Role)),
			slog.String("to", string(updated.Role)),
		)
	default:
		outcome = OutcomeUpdated
	}
	m.metrics.observe(outcome)
	return outcome
}

// terminate performs the forced logout scheduled by a pass. It does nothing if
// the user logged out or in again in the meantime.
func (m *Manager) terminate(parent context.Context, generation uint64) {
	m.mu.Lock()
	if generation != m.generation || m.state != StateTerminating || m.loggingOut {
		m.mu.Unlock()
		return
	}
	m.loggingOut = true
	m.generation++
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), terminateTimeout)
	defer cancel()
	m.metrics.terminated()
	_ = m.finishLogout(ctx)
}
