package categories

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
)

const maxSlugLength = 50

// Slugify derives a category id from its title: lowercase, whitespace runs
// become "-", anything outside [a-z0-9-] is dropped, capped at 50 characters.
// Surrounding whitespace is ignored.
func Slugify(title string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = slug[:maxSlugLength]
	}
	return slug
}

func (s *Service) validate(in CategoryInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: category title is required", httpx.ErrValidation)
	}
	if Slugify(in.Title) == "" {
		return fmt.Errorf("%w: category title must contain letters or digits", httpx.ErrValidation)
	}
	return nil
}
