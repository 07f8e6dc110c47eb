package audithttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/catalogdesk/internal/audit"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

type stubLogService struct {
	page        audit.Page
	exportRows  []audit.Entry
	err         error
	lastFilters audit.ListFilters
}

func (s *stubLogService) List(_ context.Context, filters audit.ListFilters) (audit.Page, error) {
	s.lastFilters = filters
	return s.page, s.err
}

func (s *stubLogService) Export(_ context.Context, filters audit.ListFilters) ([]audit.Entry, error) {
	s.lastFilters = filters
	return s.exportRows, s.err
}

type stubPrincipal struct{ role rbac.Role }

func (p stubPrincipal) GetID() string      { return "u-1" }
func (p stubPrincipal) GetRole() rbac.Role { return p.role }

func newRouter(svc *stubLogService, role rbac.Role) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := rbac.ContextWithPrincipal(req.Context(), stubPrincipal{role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	NewHandler(nil, svc, rbac.Middleware{}).MountRoutes(r)
	return r
}

func TestListLogsForMaster(t *testing.T) {
	svc := &stubLogService{page: audit.Page{
		Entries:    []audit.Entry{{ID: 2, Actor: "ops@example.com", Action: "product_created", Timestamp: time.Now()}},
		NextCursor: "abc",
	}}
	req := httptest.NewRequest(http.MethodGet, "/logs?page_size=10&action=product_created&cursor=xyz", nil)
	res := httptest.NewRecorder()
	newRouter(svc, rbac.RoleMaster).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var page audit.Page
	require.NoError(t, json.NewDecoder(res.Body).Decode(&page))
	assert.Len(t, page.Entries, 1)
	assert.Equal(t, "abc", page.NextCursor)
	assert.Equal(t, audit.ListFilters{Action: "product_created", Cursor: "xyz", PageSize: 10}, svc.lastFilters)
}

func TestListLogsForbiddenForUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	res := httptest.NewRecorder()
	newRouter(&stubLogService{}, rbac.RoleUser).ServeHTTP(res, req)

	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestListLogsRejectsBadPageSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/logs?page_size=-1", nil)
	res := httptest.NewRecorder()
	newRouter(&stubLogService{}, rbac.RoleMaster).ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestListLogsBadCursor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/logs?cursor=bad", nil)
	res := httptest.NewRecorder()
	newRouter(&stubLogService{err: audit.ErrInvalidCursor}, rbac.RoleMaster).ServeHTTP(res, req)

	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestExportCSV(t *testing.T) {
	svc := &stubLogService{exportRows: []audit.Entry{{ID: 1, Actor: "a", Action: "b", Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}}}
	req := httptest.NewRequest(http.MethodGet, "/logs/export.csv", nil)
	res := httptest.NewRecorder()
	newRouter(svc, rbac.RoleMaster).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "text/csv; charset=utf-8", res.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(res.Body.String(), "id,timestamp,user,action,details\n"))
}
