package appusers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence for app users.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const appUserColumns = `id::text, email, name, phone, company, is_authenticated, created_at, updated_at`

func scanAppUser(row pgx.Row) (AppUser, error) {
	var u AppUser
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Company, &u.IsAuthenticated, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns a page of app users, newest first, with the total match count.
func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]AppUser, int, error) {
	where := ` WHERE ($1 = '' OR email ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%' OR company ILIKE '%' || $1 || '%')
  AND ($2::boolean IS NULL OR is_authenticated = $2)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM app_users`+where, filter.Search, filter.Authenticated).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+appUserColumns+` FROM app_users`+where+` ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`,
		filter.Search, filter.Authenticated, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]AppUser, 0, limit)
	for rows.Next() {
		u, err := scanAppUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Get loads one app user.
func (r *Repository) Get(ctx context.Context, id string) (AppUser, error) {
	u, err := scanAppUser(r.pool.QueryRow(ctx, `SELECT `+appUserColumns+` FROM app_users WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return AppUser{}, shared.ErrNotFound
	}
	return u, err
}

// SetAuthenticated persists the approval flag.
func (r *Repository) SetAuthenticated(ctx context.Context, id string, value bool) (AppUser, error) {
	u, err := scanAppUser(r.pool.QueryRow(ctx, `UPDATE app_users SET is_authenticated = $2, updated_at = now()
WHERE id::text = $1
RETURNING `+appUserColumns, id, value))
	if errors.Is(err, pgx.ErrNoRows) {
		return AppUser{}, shared.ErrNotFound
	}
	return u, err
}

// Count returns the number of app users.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM app_users`).Scan(&n)
	return n, err
}

var _ RepositoryPort = (*Repository)(nil)
