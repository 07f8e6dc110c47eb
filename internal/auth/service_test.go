package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/catalogdesk/internal/auth"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/session"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

type failingRepo struct {
	*stubRepo
	err error
}

func (f failingRepo) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, f.err
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := auth.NewService(newStubRepo())

	_, err := svc.Authenticate(context.Background(), "missing@example.com", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateWrapsStorageErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := auth.NewService(failingRepo{stubRepo: newStubRepo(), err: boom})

	_, err := svc.Authenticate(context.Background(), "ops@example.com", "correctpass")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateReturnsRecord(t *testing.T) {
	svc := auth.NewService(newStubRepo(activeUser(t, rbac.RoleUser)))

	rec, err := svc.Authenticate(context.Background(), "OPS@example.com", "correctpass")
	require.NoError(t, err)
	assert.Equal(t, session.Record{UID: "u-1", Email: "ops@example.com", Name: "Ops", Role: rbac.RoleUser, Status: session.StatusActive}, rec)
}

func TestLookupByEmailMapsNotFound(t *testing.T) {
	svc := auth.NewService(newStubRepo())

	_, err := svc.LookupByEmail(context.Background(), "missing@example.com")
	require.ErrorIs(t, err, session.ErrRecordNotFound)
}

func TestLookupByEmailWrapsStorageErrors(t *testing.T) {
	boom := errors.New("connection refused")
	svc := auth.NewService(failingRepo{stubRepo: newStubRepo(), err: boom})

	_, err := svc.LookupByEmail(context.Background(), "ops@example.com")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, session.ErrRecordNotFound)
}
