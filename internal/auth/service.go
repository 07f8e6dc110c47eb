package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/session"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// Service wraps authentication business rules. It also serves as the
// authoritative directory for session reconciliation.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (session.Record, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return session.Record{}, shared.ErrInvalidCredentials
		}
		return session.Record{}, fmt.Errorf("auth: authenticate: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return session.Record{}, shared.ErrInvalidCredentials
	}
	if user.Status == session.StatusDisabled {
		return session.Record{}, shared.ErrAccountDisabled
	}
	return user.Record(), nil
}

// LookupByEmail returns the authoritative record for email.
func (s *Service) LookupByEmail(ctx context.Context, email string) (session.Record, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return session.Record{}, session.ErrRecordNotFound
		}
		return session.Record{}, fmt.Errorf("auth: lookup: %w", err)
	}
	return user.Record(), nil
}

// Signup registers a new account awaiting role assignment.
func (s *Service) Signup(ctx context.Context, input SignupInput) (session.Record, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return session.Record{}, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, User{
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         rbac.RolePending,
		Status:       session.StatusActive,
		PasswordHash: string(hash),
	})
	if err != nil {
		return session.Record{}, fmt.Errorf("auth: signup: %w", err)
	}
	return user.Record(), nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

func rbacRole(raw string) rbac.Role {
	role, ok := rbac.ParseRole(raw)
	if !ok {
		return rbac.RolePending
	}
	return role
}

func sessionStatus(raw string) session.Status {
	if session.Status(strings.ToLower(raw)) == session.StatusDisabled {
		return session.StatusDisabled
	}
	return session.StatusActive
}

var (
	_ session.Authenticator = (*Service)(nil)
	_ session.Directory     = (*Service)(nil)
)
