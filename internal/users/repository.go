package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/session"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectUser = `SELECT id::text, email, name, phone, role, status, created_at, updated_at FROM users`

func scanUser(row pgx.Row) (User, error) {
	var (
		u      User
		role   string
		status string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &role, &status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	u.Role = rbac.Role(role)
	u.Status = session.Status(status)
	return u, nil
}

// ListUsers returns one page of users and the total match count.
func (r *Repository) ListUsers(ctx context.Context, filter ListFilter, limit, offset int) ([]User, int, error) {
	where := ` WHERE ($1 = '' OR email ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR role = $2)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`+where, filter.Search, string(filter.Role)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, selectUser+where+` ORDER BY created_at DESC, id LIMIT $3 OFFSET $4`,
		filter.Search, string(filter.Role), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	users := make([]User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetUser loads one user.
func (r *Repository) GetUser(ctx context.Context, id string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return u, err
}

// UpdateUser persists role and status.
func (r *Repository) UpdateUser(ctx context.Context, u User) (User, error) {
	updated, err := scanUser(r.pool.QueryRow(ctx, `UPDATE users SET role = $2, status = $3, updated_at = now()
WHERE id::text = $1
RETURNING id::text, email, name, phone, role, status, created_at, updated_at`, u.ID, string(u.Role), string(u.Status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return updated, err
}

// DeleteUser removes the account and its login sessions.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountUsers returns the number of staff accounts.
func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}

var _ RepositoryPort = (*Repository)(nil)
