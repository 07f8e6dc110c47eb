package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

type harness struct {
	manager   *Manager
	store     *memoryStore
	directory *stubDirectory
	notifier  *recordingNotifier
	navigator *countingNavigator
	scheduler *manualScheduler
	metrics   *Metrics
}

func newHarness(t *testing.T, rec Record) *harness {
	t.Helper()
	h := &harness{
		store:     &memoryStore{},
		directory: &stubDirectory{rec: rec},
		notifier:  &recordingNotifier{},
		navigator: &countingNavigator{},
		scheduler: &manualScheduler{},
		metrics:   NewMetrics(prometheus.NewRegistry()),
	}
	h.manager = NewManager(Config{
		Store:         h.store,
		Directory:     h.directory,
		Authenticator: stubAuth{dir: h.directory, password: "secret"},
		Notifier:      h.notifier,
		Navigator:     h.navigator,
		Metrics:       h.metrics,
		Schedule:      h.scheduler.Schedule,
	})
	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.manager.Login(context.Background(), h.directory.rec.Email, "secret")
	require.NoError(t, err)
	h.directory.mu.Lock()
	h.directory.calls = 0
	h.directory.mu.Unlock()
}

func adminRecord() Record {
	return Record{UID: "u-1", Email: "ops@example.com", Name: "Ops", Role: rbac.RoleAdmin, Status: StatusActive}
}

func TestLoginPersistsRecord(t *testing.T) {
	h := newHarness(t, adminRecord())

	rec, err := h.manager.Login(context.Background(), "ops@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdmin, rec.Role)
	assert.Equal(t, StateFresh, h.manager.State())

	stored, _ := h.store.snapshot()
	require.NotNil(t, stored)
	assert.Equal(t, rec, *stored)
}

func TestLoginFailureLeavesSessionEmpty(t *testing.T) {
	h := newHarness(t, adminRecord())

	_, err := h.manager.Login(context.Background(), "ops@example.com", "wrong")
	require.ErrorIs(t, err, errBadPassword)
	assert.Equal(t, StateUnauthenticated, h.manager.State())
	stored, _ := h.store.snapshot()
	assert.Nil(t, stored)
}

func TestReconcileUnchanged(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	outcome, err := h.manager.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)
	assert.Equal(t, StateFresh, h.manager.State())
	assert.Empty(t, h.notifier.all())
	assert.Equal(t, 1, h.directory.callCount())
}

func TestReconcileRoleChangeConverges(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	promoted := adminRecord()
	promoted.Role = rbac.RoleMaster
	h.directory.set(promoted)

	outcome, err := h.manager.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeRoleChanged, outcome)

	outcome, err = h.manager.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, outcome)

	notices := h.notifier.all()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeInfo, notices[0].Kind)
	assert.Equal(t, "Your role has been updated to: MASTER", notices[0].Message)
	assert.Equal(t, int64(7000), notices[0].DurationMS)

	rec, ok := h.manager.Current()
	require.True(t, ok)
	assert.Equal(t, rbac.RoleMaster, rec.Role)
	stored, _ := h.store.snapshot()
	assert.Equal(t, rbac.RoleMaster, stored.Role)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.passes.WithLabelValues(string(OutcomeRoleChanged))))
}

func TestReconcileKeepsLocalProfileFields(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	changed := adminRecord()
	changed.Role = rbac.RoleUser
	changed.Name = "Renamed"
	h.directory.set(changed)

	_, err := h.manager.Reconcile(context.Background())
	require.NoError(t, err)
	rec, _ := h.manager.Current()
	assert.Equal(t, rbac.RoleUser, rec.Role)
	assert.Equal(t, "Ops", rec.Name)
}

func TestReconcileDisabledTerminatesOnce(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	disabled := adminRecord()
	disabled.Status = StatusDisabled
	h.directory.set(disabled)

	outcome, err := h.manager.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeTerminating, outcome)
	assert.Equal(t, StateTerminating, h.manager.State())

	_, err = h.manager.Reconcile(context.Background())
	require.ErrorIs(t, err, ErrReconcileSuppressed)

	notices := h.notifier.all()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Kind)
	assert.Equal(t, "Your account has been disabled. You will be logged out.", notices[0].Message)
	assert.Equal(t, []time.Duration{DefaultLogoutDelay}, h.scheduler.delays)
	assert.Zero(t, h.navigator.count())

	require.Equal(t, 1, h.scheduler.fire())
	assert.Equal(t, StateUnauthenticated, h.manager.State())
	assert.Equal(t, 1, h.navigator.count())
	stored, clears := h.store.snapshot()
	assert.Nil(t, stored)
	assert.Equal(t, 1, clears)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.terminations))

	_, ok := h.manager.Current()
	assert.False(t, ok)
}

func TestConcurrentReconcileFetchesOnce(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	disabled := adminRecord()
	disabled.Status = StatusDisabled
	h.directory.set(disabled)
	gate := make(chan struct{})
	h.directory.mu.Lock()
	h.directory.gate = gate
	h.directory.mu.Unlock()

	const callers = 8
	results := make(chan error, callers)
	var wg sync.WaitGroup
	started := make(chan struct{})
	go func() {
		_, err := h.manager.Reconcile(context.Background())
		results <- err
		close(started)
	}()
	require.Eventually(t, func() bool { return h.directory.callCount() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < callers-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.manager.Reconcile(context.Background())
			results <- err
		}()
	}
	wg.Wait()
	close(gate)
	<-started
	close(results)

	suppressed := 0
	for err := range results {
		if errors.Is(err, ErrReconcileSuppressed) {
			suppressed++
		} else {
			require.NoError(t, err)
		}
	}
	assert.Equal(t, callers-1, suppressed)
	assert.Equal(t, 1, h.directory.callCount())

	h.scheduler.fire()
	assert.Equal(t, 1, h.navigator.count())
}

func TestReconcileFetchFailureIsIsolated(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	h.directory.mu.Lock()
	h.directory.err = errors.New("unavailable")
	h.directory.mu.Unlock()

	outcome, err := h.manager.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetchFailed, outcome)
	assert.Equal(t, StateFresh, h.manager.State())
	rec, ok := h.manager.Current()
	require.True(t, ok)
	assert.Equal(t, adminRecord(), rec)
	assert.Empty(t, h.notifier.all())
	assert.Zero(t, h.navigator.count())
}

func TestReconcileMissingRecordIsIsolated(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	h.directory.set(Record{Email: "someone-else@example.com"})

	outcome, err := h.manager.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFetchFailed, outcome)
	assert.Equal(t, StateFresh, h.manager.State())
}

func TestReconcileRequiresFreshSession(t *testing.T) {
	h := newHarness(t, adminRecord())

	outcome, err := h.manager.Reconcile(context.Background())
	require.ErrorIs(t, err, ErrReconcileSuppressed)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Zero(t, h.directory.callCount())
}

func TestLogoutDuringPassDiscardsResult(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	promoted := adminRecord()
	promoted.Role = rbac.RoleMaster
	h.directory.set(promoted)
	gate := make(chan struct{})
	h.directory.mu.Lock()
	h.directory.gate = gate
	h.directory.mu.Unlock()

	done := make(chan Outcome, 1)
	go func() {
		outcome, _ := h.manager.Reconcile(context.Background())
		done <- outcome
	}()
	require.Eventually(t, func() bool { return h.directory.callCount() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, h.manager.Logout(context.Background()))
	close(gate)

	assert.Equal(t, OutcomeDiscarded, <-done)
	assert.Equal(t, StateUnauthenticated, h.manager.State())
	assert.Empty(t, h.notifier.all())
	stored, _ := h.store.snapshot()
	assert.Nil(t, stored)
}

func TestLogoutDuringDelayRedirectsOnce(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	disabled := adminRecord()
	disabled.Status = StatusDisabled
	h.directory.set(disabled)

	_, err := h.manager.Reconcile(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.manager.Logout(context.Background()))
	h.scheduler.fire()

	assert.Equal(t, 1, h.navigator.count())
	assert.Equal(t, StateUnauthenticated, h.manager.State())
}

func TestLogoutWhenSignedOutIsNoop(t *testing.T) {
	h := newHarness(t, adminRecord())

	require.NoError(t, h.manager.Logout(context.Background()))
	assert.Zero(t, h.navigator.count())
}

func TestResumeStartsOnePass(t *testing.T) {
	h := newHarness(t, adminRecord())
	h.login(t)

	gate := make(chan struct{})
	h.directory.mu.Lock()
	h.directory.gate = gate
	h.directory.mu.Unlock()

	assert.True(t, h.manager.Resume(context.Background()))
	assert.False(t, h.manager.Resume(context.Background()))
	close(gate)

	require.Eventually(t, func() bool { return h.manager.State() == StateFresh }, time.Second, time.Millisecond)
	assert.Equal(t, 1, h.directory.callCount())
}

func TestRestoreRehydratesFromStore(t *testing.T) {
	h := newHarness(t, adminRecord())
	rec := adminRecord()
	require.NoError(t, h.store.Save(context.Background(), rec))

	ok, err := h.manager.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateFresh, h.manager.State())
	current, _ := h.manager.Current()
	assert.Equal(t, rec, current)
}

func TestStateText(t *testing.T) {
	raw, err := StateCheckPending.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "authenticated-stale-check-pending", string(raw))
	assert.Equal(t, "unauthenticated", StateUnauthenticated.String())
}
