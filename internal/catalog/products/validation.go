package products

import (
	"fmt"
	"slices"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
)

func (s *Service) validate(p Product) error {
	if p.CategoryID == "" {
		return fmt.Errorf("%w: category is required", httpx.ErrValidation)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: product title is required", httpx.ErrValidation)
	}
	if p.ID != "" && slices.Contains(p.RelatedParts, p.ID) {
		return fmt.Errorf("%w: a product cannot be related to itself", httpx.ErrValidation)
	}
	return nil
}
