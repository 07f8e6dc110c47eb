package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogshared "github.com/odyssey-erp/catalogdesk/internal/catalog/shared"
	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// ErrInUse is returned when deleting a category that still has products.
var ErrInUse = fmt.Errorf("%w: category still has products", httpx.ErrDuplicate)

type Repository interface {
	List(ctx context.Context, filters catalogshared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id string) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, category Category) (Category, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var sortColumns = map[string]string{
	"title":      "title",
	"created_at": "created_at",
}

const columns = `id, title, description, image_url, created_at, updated_at`

func scan(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, filters catalogshared.ListFilters) ([]Category, int, error) {
	filters = filters.Normalize()
	where := ` WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where, filters.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM categories` + where +
		` ORDER BY ` + catalogshared.SortOrder(filters.SortBy, filters.SortDir, sortColumns, "title") +
		` LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, filters.Search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Category, error) {
	c, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	c, err := scan(r.pool.QueryRow(ctx, `INSERT INTO categories (id, title, description, image_url)
VALUES ($1, $2, $3, $4) RETURNING `+columns,
		category.ID, category.Title, category.Description, category.ImageURL))
	if shared.IsUniqueViolation(err) {
		return Category{}, fmt.Errorf("%w: category %q already exists", httpx.ErrDuplicate, category.ID)
	}
	return c, err
}

func (r *repository) Update(ctx context.Context, category Category) (Category, error) {
	c, err := scan(r.pool.QueryRow(ctx, `UPDATE categories
SET title = $2, description = $3, image_url = $4, updated_at = now()
WHERE id = $1 RETURNING `+columns,
		category.ID, category.Title, category.Description, category.ImageURL))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if shared.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}
