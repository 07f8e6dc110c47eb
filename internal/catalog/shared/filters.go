package shared

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilters represents standard list filters
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Product specific filters
	CategoryID string
	Featured   *bool
}

// Normalize clamps paging values into range.
func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.SortDir != SortDesc {
		f.SortDir = SortAsc
	}
	return f
}

// Offset returns the row offset for the page.
func (f ListFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// SortOrder builds an ORDER BY clause from a whitelist of columns. Unknown
// sort keys fall back to fallback.
func SortOrder(sortBy, sortDir string, allowed map[string]string, fallback string) string {
	dir := "ASC"
	if sortDir == SortDesc {
		dir = "DESC"
	}
	column, ok := allowed[sortBy]
	if !ok {
		column = fallback
	}
	return column + " " + dir
}
