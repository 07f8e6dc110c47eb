package users

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/catalogdesk/internal/audit"
	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/session"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context, filter ListFilter, limit, offset int) ([]User, int, error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

// ErrSelfChange blocks a user from changing or deleting their own account.
var ErrSelfChange = fmt.Errorf("%w: cannot change your own account", httpx.ErrForbidden)

// Service handles user business logic. Role and status writes here are the
// authoritative changes that signed-in sessions reconcile against.
type Service struct {
	repo  RepositoryPort
	audit audit.Recorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, recorder audit.Recorder) *Service {
	return &Service{repo: repo, audit: recorder}
}

// ListUsers returns a page of users.
func (s *Service) ListUsers(ctx context.Context, filter ListFilter) ([]User, shared.Pagination, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	users, total, err := s.repo.ListUsers(ctx, filter, page.PerPage, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("users: list: %w", err)
	}
	return users, shared.NewPagination(page.Page, page.PerPage, total), nil
}

// Count returns the number of staff accounts.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.CountUsers(ctx)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// UpdateUser applies a role and/or status change and records it.
func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateInput) (User, error) {
	if input.Role == nil && input.Status == nil {
		return User{}, fmt.Errorf("%w: nothing to update", httpx.ErrValidation)
	}
	if isSelf(ctx, id) {
		return User{}, ErrSelfChange
	}
	current, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	next := current
	if input.Role != nil {
		role, ok := rbac.ParseRole(*input.Role)
		if !ok {
			return User{}, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, *input.Role)
		}
		next.Role = role
	}
	if input.Status != nil {
		next.Status = session.Status(*input.Status)
	}
	if next.Role == current.Role && next.Status == current.Status {
		return current, nil
	}

	updated, err := s.repo.UpdateUser(ctx, next)
	if err != nil {
		return User{}, fmt.Errorf("users: update: %w", err)
	}
	if updated.Role != current.Role {
		s.record(ctx, "user_role_updated", map[string]any{
			"user_id": updated.ID, "email": updated.Email,
			"from": string(current.Role), "to": string(updated.Role),
		})
	}
	if updated.Status != current.Status {
		s.record(ctx, "user_status_updated", map[string]any{
			"user_id": updated.ID, "email": updated.Email,
			"from": string(current.Status), "to": string(updated.Status),
		})
	}
	return updated, nil
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if isSelf(ctx, id) {
		return ErrSelfChange
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "user_deleted", map[string]any{"user_id": id})
	return nil
}

func (s *Service) record(ctx context.Context, action string, details map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, action, details)
}

func isSelf(ctx context.Context, id string) bool {
	p, ok := rbac.PrincipalFromContext(ctx)
	return ok && p.GetID() == id
}
