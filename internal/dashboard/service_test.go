package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/catalogdesk/internal/audit"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

type stubLogs struct {
	calls atomic.Int32
}

func (s *stubLogs) Recent(_ context.Context, n int) ([]audit.Entry, error) {
	s.calls.Add(1)
	out := make([]audit.Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, audit.Entry{ID: int64(i + 1), Action: "product_updated", Timestamp: time.Now()})
	}
	return out, nil
}

func fixed(n int) Counter {
	return CounterFunc(func(context.Context) (int, error) { return n, nil })
}

func newService(logs LogSource) *Service {
	return NewService(map[rbac.Resource]Counter{
		rbac.ResourceProducts:      fixed(12),
		rbac.ResourceCategories:    fixed(3),
		rbac.ResourceUsers:         fixed(4),
		rbac.ResourceInquiries:     fixed(7),
		rbac.ResourceAppUsers:      fixed(9),
		rbac.ResourceNotifications: fixed(2),
		rbac.ResourceWhatsNew:      fixed(1),
	}, logs)
}

func TestStatsForMaster(t *testing.T) {
	logs := &stubLogs{}
	stats, err := newService(logs).Stats(context.Background(), rbac.RoleMaster)
	require.NoError(t, err)

	assert.Len(t, stats.Counts, 7)
	assert.Equal(t, 12, stats.Counts[rbac.ResourceProducts])
	assert.Len(t, stats.RecentLogs, RecentLogCount)
	assert.EqualValues(t, 1, logs.calls.Load())
}

func TestStatsOmitUnreadableResources(t *testing.T) {
	logs := &stubLogs{}
	stats, err := newService(logs).Stats(context.Background(), rbac.RoleUser)
	require.NoError(t, err)

	assert.NotContains(t, stats.Counts, rbac.ResourceUsers)
	assert.NotContains(t, stats.Counts, rbac.ResourceAppUsers)
	assert.Equal(t, 7, stats.Counts[rbac.ResourceInquiries])
	assert.Nil(t, stats.RecentLogs)
	assert.Zero(t, logs.calls.Load())
}

func TestStatsPendingGetsNothing(t *testing.T) {
	stats, err := newService(&stubLogs{}).Stats(context.Background(), rbac.RolePending)
	require.NoError(t, err)
	assert.Empty(t, stats.Counts)
	assert.Nil(t, stats.RecentLogs)
}

func TestStatsFailureFailsSummary(t *testing.T) {
	svc := NewService(map[rbac.Resource]Counter{
		rbac.ResourceProducts: fixed(1),
		rbac.ResourceCategories: CounterFunc(func(context.Context) (int, error) {
			return 0, errors.New("db down")
		}),
	}, nil)

	_, err := svc.Stats(context.Background(), rbac.RoleAdmin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "categories")
}

type principal struct{ role rbac.Role }

func (p principal) GetID() string      { return "caller" }
func (p principal) GetRole() rbac.Role { return p.role }

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/dashboard", NewHandler(nil, newService(&stubLogs{})).MountRoutes)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)
	req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), principal{role: rbac.RoleAdmin}))
	res = httptest.NewRecorder()
	r.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		Counts     map[string]int `json:"counts"`
		RecentLogs []audit.Entry  `json:"recent_logs"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Counts["users"])
	assert.Len(t, body.RecentLogs, RecentLogCount)
}
