package announcements

import (
	"context"
	"fmt"
	"strings"

	"github.com/odyssey-erp/catalogdesk/internal/audit"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// RepositoryPort defines data access methods for announcements.
type RepositoryPort interface {
	List(ctx context.Context, kind Kind, limit, offset int) ([]Announcement, int, error)
	Get(ctx context.Context, kind Kind, id string) (Announcement, error)
	Create(ctx context.Context, a Announcement) (Announcement, error)
	Update(ctx context.Context, a Announcement) (Announcement, error)
	Delete(ctx context.Context, kind Kind, id string) error
	Count(ctx context.Context, kind Kind) (int, error)
}

// Service manages announcements of a single kind.
type Service struct {
	kind  Kind
	repo  RepositoryPort
	audit audit.Recorder
}

// NewService builds a Service bound to kind.
func NewService(kind Kind, repo RepositoryPort, recorder audit.Recorder) *Service {
	return &Service{kind: kind, repo: repo, audit: recorder}
}

// Kind reports the kind the service manages.
func (s *Service) Kind() Kind { return s.kind }

func (s *Service) List(ctx context.Context, page, perPage int) ([]Announcement, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	items, total, err := s.repo.List(ctx, s.kind, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("announcements: list %s: %w", s.kind, err)
	}
	return items, shared.NewPagination(p.Page, p.PerPage, total), nil
}

func (s *Service) Get(ctx context.Context, id string) (Announcement, error) {
	return s.repo.Get(ctx, s.kind, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Announcement, error) {
	if err := input.Link.check(); err != nil {
		return Announcement{}, err
	}
	created, err := s.repo.Create(ctx, s.build("", input))
	if err != nil {
		return Announcement{}, fmt.Errorf("announcements: create %s: %w", s.kind, err)
	}
	s.record(ctx, "created", created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, input Input) (Announcement, error) {
	if err := input.Link.check(); err != nil {
		return Announcement{}, err
	}
	updated, err := s.repo.Update(ctx, s.build(id, input))
	if err != nil {
		return Announcement{}, err
	}
	s.record(ctx, "updated", updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, s.kind, id); err != nil {
		return err
	}
	s.record(ctx, "deleted", Announcement{ID: id})
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx, s.kind)
}

func (s *Service) build(id string, input Input) Announcement {
	return Announcement{
		ID:          id,
		Kind:        s.kind,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Image:       strings.TrimSpace(input.Image),
		Link:        input.Link,
	}
}

// record writes e.g. "notification_created" or "whats_new_deleted".
func (s *Service) record(ctx context.Context, verb string, a Announcement) {
	if s.audit == nil {
		return
	}
	details := map[string]any{"id": a.ID}
	if a.Name != "" {
		details["name"] = a.Name
	}
	_ = s.audit.Record(ctx, string(s.kind)+"_"+verb, details)
}
