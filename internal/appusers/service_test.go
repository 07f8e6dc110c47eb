package appusers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
	"github.com/odyssey-erp/catalogdesk/jobs"
)

type memRepo struct {
	users map[string]AppUser
}

func (m *memRepo) List(_ context.Context, filter ListFilter, limit, offset int) ([]AppUser, int, error) {
	out := []AppUser{}
	for _, u := range m.users {
		if filter.Authenticated != nil && u.IsAuthenticated != *filter.Authenticated {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *memRepo) Get(_ context.Context, id string) (AppUser, error) {
	u, ok := m.users[id]
	if !ok {
		return AppUser{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memRepo) SetAuthenticated(_ context.Context, id string, value bool) (AppUser, error) {
	u := m.users[id]
	u.IsAuthenticated = value
	m.users[id] = u
	return u, nil
}

func (m *memRepo) Count(context.Context) (int, error) { return len(m.users), nil }

type fakeQueue struct {
	sent []jobs.SendEmailPayload
	err  error
}

func (q *fakeQueue) EnqueueSendEmail(_ context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.sent = append(q.sent, payload)
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueDefault}, nil
}

type recorder struct{ actions []string }

func (r *recorder) Record(_ context.Context, action string, _ map[string]any) error {
	r.actions = append(r.actions, action)
	return nil
}

func newFixture() (*Service, *memRepo, *fakeQueue, *recorder) {
	repo := &memRepo{users: map[string]AppUser{
		"a1": {ID: "a1", Email: "buyer@example.com", Name: "Buyer"},
		"a2": {ID: "a2", Email: "fleet@example.com", Name: "Fleet", IsAuthenticated: true},
	}}
	queue := &fakeQueue{}
	rec := &recorder{}
	return NewService(repo, queue, rec, nil), repo, queue, rec
}

func TestApproveQueuesMail(t *testing.T) {
	svc, repo, queue, rec := newFixture()

	updated, err := svc.SetAuthenticated(context.Background(), "a1", true)
	require.NoError(t, err)
	assert.True(t, updated.IsAuthenticated)
	assert.True(t, repo.users["a1"].IsAuthenticated)
	require.Len(t, queue.sent, 1)
	assert.Equal(t, "buyer@example.com", queue.sent[0].To)
	assert.Contains(t, queue.sent[0].Body, "Your account has been authenticated")
	assert.Equal(t, []string{"app_user_authentication_updated"}, rec.actions)
}

func TestRevokeDoesNotMail(t *testing.T) {
	svc, _, queue, rec := newFixture()

	updated, err := svc.SetAuthenticated(context.Background(), "a2", false)
	require.NoError(t, err)
	assert.False(t, updated.IsAuthenticated)
	assert.Empty(t, queue.sent)
	assert.Len(t, rec.actions, 1)
}

func TestUnchangedFlagIsNoop(t *testing.T) {
	svc, _, queue, rec := newFixture()

	_, err := svc.SetAuthenticated(context.Background(), "a2", true)
	require.NoError(t, err)
	assert.Empty(t, queue.sent)
	assert.Empty(t, rec.actions)
}

func TestEnqueueFailureKeepsChange(t *testing.T) {
	svc, repo, queue, _ := newFixture()
	queue.err = errors.New("redis down")

	_, err := svc.SetAuthenticated(context.Background(), "a1", true)
	require.NoError(t, err)
	assert.True(t, repo.users["a1"].IsAuthenticated)
}

func TestMissingAppUser(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.SetAuthenticated(context.Background(), "ghost", true)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

type principal struct{ role rbac.Role }

func (p principal) GetID() string      { return "caller" }
func (p principal) GetRole() rbac.Role { return p.role }

func serve(svc *Service, role rbac.Role, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), principal{role: role})))
		})
	})
	r.Route("/app-users", NewHandler(nil, svc, rbac.Middleware{}).MountRoutes)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(method, path, strings.NewReader(body)))
	return res
}

func TestHandlerPermissions(t *testing.T) {
	svc, _, _, _ := newFixture()

	assert.Equal(t, http.StatusForbidden, serve(svc, rbac.RoleUser, http.MethodGet, "/app-users/", "").Code)

	res := serve(svc, rbac.RoleAdmin, http.MethodGet, "/app-users/?authenticated=true", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"total":1`)

	res = serve(svc, rbac.RoleAdmin, http.MethodPatch, "/app-users/a1", `{"is_authenticated":true}`)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"is_authenticated":true`)
}

func TestHandlerRejectsBadInput(t *testing.T) {
	svc, _, _, _ := newFixture()

	assert.Equal(t, http.StatusBadRequest, serve(svc, rbac.RoleMaster, http.MethodPatch, "/app-users/a1", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(svc, rbac.RoleMaster, http.MethodGet, "/app-users/?authenticated=maybe", "").Code)
}
