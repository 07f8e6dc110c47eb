package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogshared "github.com/odyssey-erp/catalogdesk/internal/catalog/shared"
	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// ErrUnknownCategory is returned when a product references a missing category.
var ErrUnknownCategory = fmt.Errorf("%w: unknown category", httpx.ErrValidation)

type Repository interface {
	List(ctx context.Context, filters catalogshared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) (Product, error)
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
	"price":      "price",
	"created_at": "created_at",
}

const columns = `id::text, category_id, title, subtitle, overview, material_number, iso, shank_size,
	cutting_conditions, abrasive, machine_hp, cutting_material, images, product_img, overview_img,
	related_parts, featured, price, created_at, updated_at`

func scan(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.Title, &p.Subtitle, &p.Overview, &p.MaterialNumber, &p.ISO, &p.ShankSize,
		&p.CuttingConditions, &p.Abrasive, &p.MachineHP, &p.CuttingMaterial, &p.Images, &p.ProductImg, &p.OverviewImg,
		&p.RelatedParts, &p.Featured, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List uses a dynamic query due to filter complexity
func (r *repository) List(ctx context.Context, filters catalogshared.ListFilters) ([]Product, int, error) {
	filters = filters.Normalize()
	var (
		clauses []string
		args    []any
	)
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR material_number ILIKE $%d OR subtitle ILIKE $%d)", n, n, n))
	}
	if filters.CategoryID != "" {
		args = append(args, filters.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filters.Featured != nil {
		args = append(args, *filters.Featured)
		clauses = append(clauses, fmt.Sprintf("featured = $%d", len(args)))
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + columns + ` FROM products` + where +
		` ORDER BY ` + catalogshared.SortOrder(filters.SortBy, filters.SortDir, sortColumns, "created_at") +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, filters.Limit, filters.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		return scan(row)
	})
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repository) Get(ctx context.Context, id string) (Product, error) {
	p, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	created, err := scan(r.pool.QueryRow(ctx, `INSERT INTO products (category_id, title, subtitle, overview,
	material_number, iso, shank_size, cutting_conditions, abrasive, machine_hp, cutting_material, images,
	product_img, overview_img, related_parts, featured, price)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING `+columns,
		p.CategoryID, p.Title, p.Subtitle, p.Overview, p.MaterialNumber, p.ISO, p.ShankSize, p.CuttingConditions,
		p.Abrasive, p.MachineHP, p.CuttingMaterial, p.Images, p.ProductImg, p.OverviewImg, p.RelatedParts,
		p.Featured, p.Price))
	if shared.IsForeignKeyViolation(err) {
		return Product{}, ErrUnknownCategory
	}
	return created, err
}

func (r *repository) Update(ctx context.Context, p Product) (Product, error) {
	updated, err := scan(r.pool.QueryRow(ctx, `UPDATE products SET category_id = $2, title = $3, subtitle = $4,
	overview = $5, material_number = $6, iso = $7, shank_size = $8, cutting_conditions = $9, abrasive = $10,
	machine_hp = $11, cutting_material = $12, images = $13, product_img = $14, overview_img = $15,
	related_parts = $16, featured = $17, price = $18, updated_at = now()
WHERE id::text = $1
RETURNING `+columns,
		p.ID, p.CategoryID, p.Title, p.Subtitle, p.Overview, p.MaterialNumber, p.ISO, p.ShankSize, p.CuttingConditions,
		p.Abrasive, p.MachineHP, p.CuttingMaterial, p.Images, p.ProductImg, p.OverviewImg, p.RelatedParts,
		p.Featured, p.Price))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Product{}, shared.ErrNotFound
	case shared.IsForeignKeyViolation(err):
		return Product{}, ErrUnknownCategory
	}
	return updated, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id::text = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}
