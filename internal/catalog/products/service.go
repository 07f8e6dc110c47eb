package products

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

func (s *Service) List(ctx context.Context, filters catalogshared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	product := form.toProduct()
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, "product_created", created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, form ProductForm) (Product, error) {
	product := form.toProduct()
	product.ID = strings.TrimSpace(id)
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, "product_updated", updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "product_deleted", Product{ID: id})
	return nil
}

func (s *Service) record(ctx context.Context, action string, p Product) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, action, map[string]any{
		"product_id":  p.ID,
		"title":       p.Title,
		"category_id": p.CategoryID,
	})
}
