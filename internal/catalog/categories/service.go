package categories

import (
	"context"
	"strings"

	"github.com/odyssey-erp/catalogdesk/internal/audit"
	catalogshared "github.com/odyssey-erp/catalogdesk/internal/catalog/shared"
)

type Service struct {
	repo  Repository
	audit audit.Recorder
}

func NewService(repo Repository, recorder audit.Recorder) *Service {
	return &Service{repo: repo, audit: recorder}
}

func (s *Service) List(ctx context.Context, filters catalogshared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Create stores a category under the slug of its title.
func (s *Service) Create(ctx context.Context, in CategoryInput) (Category, error) {
	if err := s.validate(in); err != nil {
		return Category{}, err
	}
	created, err := s.repo.Create(ctx, Category{
		ID:          Slugify(in.Title),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
	})
	if err != nil {
		return Category{}, err
	}
	s.record(ctx, "category_created", created)
	return created, nil
}

// Update changes the fields of a category. The id stays fixed even when the
// title changes so product references remain valid.
func (s *Service) Update(ctx context.Context, id string, in CategoryInput) (Category, error) {
	if err := s.validate(in); err != nil {
		return Category{}, err
	}
	updated, err := s.repo.Update(ctx, Category{
		ID:          strings.TrimSpace(id),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
	})
	if err != nil {
		return Category{}, err
	}
	s.record(ctx, "category_updated", updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	s.record(ctx, "category_deleted", Category{ID: id})
	return nil
}

func (s *Service) record(ctx context.Context, action string, c Category) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, action, map[string]any{"category_id": c.ID, "title": c.Title})
}
