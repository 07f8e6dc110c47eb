package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

func newTestRegistry(t *testing.T, dir *stubDirectory, sched *manualScheduler) *Registry {
	t.Helper()
	_, client := newRedis(t)
	return NewRegistry(RegistryConfig{
		NewStore:      RedisStoreFactory(client, time.Hour),
		Directory:     dir,
		Authenticator: stubAuth{dir: dir, password: "secret"},
		Schedule:      sched.Schedule,
	})
}

func TestRegistryLookupRestoresPersistedSession(t *testing.T) {
	dir := &stubDirectory{rec: adminRecord()}
	reg := newTestRegistry(t, dir, &manualScheduler{})
	ctx := context.Background()

	_, ok, err := reg.Lookup(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, reg.Len())

	h, err := reg.Acquire(ctx, "sid-1")
	require.NoError(t, err)
	_, err = h.Manager.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)

	reg.Release("sid-1")
	restored, ok, err := reg.Lookup(ctx, "sid-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotSame(t, h, restored)
	rec, ok := restored.Manager.Current()
	require.True(t, ok)
	assert.Equal(t, rbac.RoleAdmin, rec.Role)
}

func TestRegistrySweepQueuesNoticesAndTerminates(t *testing.T) {
	dir := &stubDirectory{rec: adminRecord()}
	sched := &manualScheduler{}
	reg := newTestRegistry(t, dir, sched)
	ctx := context.Background()

	h, err := reg.Acquire(ctx, "sid-1")
	require.NoError(t, err)
	_, err = h.Manager.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)

	disabled := adminRecord()
	disabled.Status = StatusDisabled
	dir.set(disabled)

	assert.Equal(t, 1, reg.Sweep(ctx))
	require.Eventually(t, func() bool { return h.Manager.State() == StateTerminating }, time.Second, time.Millisecond)
	assert.Zero(t, reg.Sweep(ctx))

	notices := h.Outbox.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Kind)
	assert.Empty(t, h.Outbox.Drain())

	require.Equal(t, 1, sched.fire())
	assert.True(t, reg.Terminated(h))

	reg.Sweep(ctx)
	assert.Zero(t, reg.Len())
	_, ok, err := reg.Lookup(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistrySweepEvictsExpiredSessions(t *testing.T) {
	dir := &stubDirectory{rec: adminRecord()}
	mr, client := newRedis(t)
	reg := NewRegistry(RegistryConfig{
		NewStore:      RedisStoreFactory(client, time.Minute),
		Directory:     dir,
		Authenticator: stubAuth{dir: dir, password: "secret"},
		Schedule:      (&manualScheduler{}).Schedule,
	})
	ctx := context.Background()

	h, err := reg.Acquire(ctx, "sid-1")
	require.NoError(t, err)
	_, err = h.Manager.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)
	lookups := dir.callCount()

	mr.FastForward(24 * time.Hour)

	for i := 0; i < 3; i++ {
		assert.Zero(t, reg.Sweep(ctx))
	}
	assert.Zero(t, reg.Len())
	assert.Equal(t, lookups, dir.callCount())
	assert.False(t, mr.Exists("catalogdesk:current_user:sid-1"))

	_, ok, err := reg.Lookup(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistryEndLogsOutPersistedSession(t *testing.T) {
	dir := &stubDirectory{rec: adminRecord()}
	reg := newTestRegistry(t, dir, &manualScheduler{})
	ctx := context.Background()

	h, err := reg.Acquire(ctx, "sid-1")
	require.NoError(t, err)
	_, err = h.Manager.Login(ctx, "ops@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, reg.End(ctx, "sid-1"))
	assert.Zero(t, reg.Len())
	assert.Equal(t, StateUnauthenticated, h.Manager.State())
	_, ok, err := reg.Lookup(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reg.End(ctx, "unknown"))
	require.NoError(t, reg.End(ctx, ""))
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	reg := newTestRegistry(t, &stubDirectory{}, &manualScheduler{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("registry loop did not stop")
	}
}

func TestOutboxDropsOldest(t *testing.T) {
	var box Outbox
	for i := 0; i < outboxLimit+5; i++ {
		box.Notify(context.Background(), RoleChangedNotice(rbac.RoleUser))
	}
	assert.Equal(t, outboxLimit, box.Len())
	assert.Len(t, box.Drain(), outboxLimit)
	assert.Zero(t, box.Len())
}
