package inquiries

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

type memRepo struct {
	mu    sync.Mutex
	items []Inquiry
	fail  error
}

func (m *memRepo) Create(_ context.Context, in Inquiry) (Inquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return Inquiry{}, m.fail
	}
	in.ID = fmt.Sprintf("inq-%d", len(m.items)+1)
	in.CreatedAt = time.Now()
	m.items = append(m.items, in)
	return in, nil
}

func (m *memRepo) List(_ context.Context, filter ListFilter, _, _ int) ([]Inquiry, int, error) {
	out := []Inquiry{}
	for _, in := range m.items {
		if filter.Status == "" || in.Status == filter.Status {
			out = append(out, in)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id string, status Status) (Inquiry, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			return m.items[i], nil
		}
	}
	return Inquiry{}, shared.ErrNotFound
}

func (m *memRepo) Count(context.Context) (int, error) { return len(m.items), nil }

type memKeys struct {
	claimed map[string]bool
}

func (k *memKeys) Claim(_ context.Context, key, scope string) error {
	if k.claimed[scope+"/"+key] {
		return shared.ErrIdempotencyConflict
	}
	k.claimed[scope+"/"+key] = true
	return nil
}

func (k *memKeys) Release(_ context.Context, key, scope string) error {
	delete(k.claimed, scope+"/"+key)
	return nil
}

type principal struct{ role rbac.Role }

func (p principal) GetID() string      { return "staff" }
func (p principal) GetRole() rbac.Role { return p.role }

func newRouter(svc *Service, role rbac.Role) chi.Router {
	h := NewHandler(nil, svc, rbac.Middleware{})
	r := chi.NewRouter()
	r.Route("/api/inquiries", h.MountPublicRoutes)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if role != "" {
					req = req.WithContext(rbac.ContextWithPrincipal(req.Context(), principal{role: role}))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Route("/inquiries", h.MountRoutes)
	})
	return r
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

const validBody = `{"name":"Ravi","email":"Ravi@Example.com","phone":"+91 98765","product_ids":["p1","p2"],"message":"Need a quote"}`

func TestSubmitCreatesOpenInquiry(t *testing.T) {
	repo := &memRepo{}
	router := newRouter(NewService(repo, nil, nil), "")

	res := do(router, http.MethodPost, "/api/inquiries/", validBody, nil)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Contains(t, res.Body.String(), "Inquiry submitted successfully")
	require.Len(t, repo.items, 1)
	assert.Equal(t, StatusOpen, repo.items[0].Status)
	assert.Equal(t, "ravi@example.com", repo.items[0].Email)
	assert.Equal(t, []string{"p1", "p2"}, repo.items[0].ProductIDs)
}

func TestSubmitMissingFields(t *testing.T) {
	router := newRouter(NewService(&memRepo{}, nil, nil), "")

	cases := []string{
		`{"email":"a@b.co","phone":"1","product_ids":["p1"],"message":"m"}`,
		`{"name":"n","phone":"1","product_ids":["p1"],"message":"m"}`,
		`{"name":"n","email":"a@b.co","product_ids":["p1"],"message":"m"}`,
		`{"name":"n","email":"a@b.co","phone":"1","message":"m"}`,
		`{"name":"n","email":"a@b.co","phone":"1","product_ids":[],"message":"m"}`,
		`{"name":"n","email":"a@b.co","phone":"1","product_ids":["p1"]}`,
	}
	for _, body := range cases {
		res := do(router, http.MethodPost, "/api/inquiries/", body, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, body)
	}
}

func TestSubmitIdempotencyKey(t *testing.T) {
	repo := &memRepo{}
	keys := &memKeys{claimed: map[string]bool{}}
	router := newRouter(NewService(repo, keys, nil), "")
	headers := map[string]string{IdempotencyHeader: "abc-123"}

	require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/api/inquiries/", validBody, headers).Code)
	assert.Equal(t, http.StatusConflict, do(router, http.MethodPost, "/api/inquiries/", validBody, headers).Code)
	assert.Len(t, repo.items, 1)
}

func TestSubmitReleasesKeyOnFailure(t *testing.T) {
	repo := &memRepo{fail: errors.New("db down")}
	keys := &memKeys{claimed: map[string]bool{}}
	svc := NewService(repo, keys, nil)

	_, err := svc.Submit(context.Background(), SubmitInput{Name: "n", Email: "a@b.co", Phone: "1", ProductIDs: []string{"p"}, Message: "m"}, "k1")
	require.Error(t, err)
	assert.Empty(t, keys.claimed)
}

func TestStaffRoutesArePermissioned(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, nil, nil)
	_, err := svc.Submit(context.Background(), SubmitInput{Name: "n", Email: "a@b.co", Phone: "1", ProductIDs: []string{"p"}, Message: "m"}, "")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(newRouter(svc, ""), http.MethodGet, "/inquiries/", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(newRouter(svc, rbac.RolePending), http.MethodGet, "/inquiries/", "", nil).Code)

	userRouter := newRouter(svc, rbac.RoleUser)
	res := do(userRouter, http.MethodGet, "/inquiries/?status=open", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"total":1`)
	assert.Equal(t, http.StatusForbidden, do(userRouter, http.MethodPatch, "/inquiries/inq-1", `{"status":"resolved"}`, nil).Code)

	adminRouter := newRouter(svc, rbac.RoleAdmin)
	res = do(adminRouter, http.MethodPatch, "/inquiries/inq-1", `{"status":"resolved"}`, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, StatusResolved, repo.items[0].Status)
	assert.Equal(t, http.StatusBadRequest, do(adminRouter, http.MethodPatch, "/inquiries/inq-1", `{"status":"closed"}`, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(adminRouter, http.MethodPatch, "/inquiries/missing", `{"status":"open"}`, nil).Code)
}
