package inquiries

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/odyssey-erp/catalogdesk/internal/audit"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// RepositoryPort defines data access methods for inquiries.
type RepositoryPort interface {
	Create(ctx context.Context, in Inquiry) (Inquiry, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Inquiry, int, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Inquiry, error)
	Count(ctx context.Context) (int, error)
}

// KeyClaimer guards public submissions against client retries.
// *shared.IdempotencyStore satisfies it.
type KeyClaimer interface {
	Claim(ctx context.Context, key, scope string) error
	Release(ctx context.Context, key, scope string) error
}

const idempotencyScope = "inquiry_submit"

// Service handles inquiry intake and triage.
type Service struct {
	repo  RepositoryPort
	keys  KeyClaimer
	audit audit.Recorder
}

// NewService builds Service instance. keys may be nil to disable
// idempotency checks.
func NewService(repo RepositoryPort, keys KeyClaimer, recorder audit.Recorder) *Service {
	return &Service{repo: repo, keys: keys, audit: recorder}
}

// Submit stores a public inquiry. A non-empty idempotencyKey that was already
// used returns shared.ErrIdempotencyConflict.
func (s *Service) Submit(ctx context.Context, input SubmitInput, idempotencyKey string) (Inquiry, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" && s.keys != nil {
		if err := s.keys.Claim(ctx, idempotencyKey, idempotencyScope); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return Inquiry{}, err
			}
			return Inquiry{}, fmt.Errorf("inquiries: claim key: %w", err)
		}
	}
	created, err := s.repo.Create(ctx, Inquiry{
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:      strings.TrimSpace(input.Phone),
		ProductIDs: input.ProductIDs,
		Message:    strings.TrimSpace(input.Message),
		Status:     StatusOpen,
	})
	if err != nil {
		if idempotencyKey != "" && s.keys != nil {
			_ = s.keys.Release(ctx, idempotencyKey, idempotencyScope)
		}
		return Inquiry{}, fmt.Errorf("inquiries: create: %w", err)
	}
	return created, nil
}

// List returns a page of inquiries.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Inquiry, shared.Pagination, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	items, total, err := s.repo.List(ctx, filter, page.PerPage, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("inquiries: list: %w", err)
	}
	return items, shared.NewPagination(page.Page, page.PerPage, total), nil
}

// UpdateStatus moves an inquiry between open and resolved.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Inquiry, error) {
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return Inquiry{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, "inquiry_status_updated", map[string]any{"inquiry_id": id, "status": string(status)})
	}
	return updated, nil
}

// Count returns the number of inquiries.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
