package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, user User) (*User, error)
	CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id::text, email, name, phone, role, status, password_hash,
	email_notifications, push_notifications, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role, status string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &role, &status, &u.PasswordHash,
		&u.EmailNotifications, &u.PushNotifications, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = rbacRole(role)
	u.Status = sessionStatus(status)
	return &u, nil
}

// FindByEmail fetches a user by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateUser inserts a new account.
func (r *PGRepository) CreateUser(ctx context.Context, user User) (*User, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO users (email, name, phone, role, status, password_hash)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+userColumns,
		user.Email, user.Name, user.Phone, string(user.Role), string(user.Status), user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		if shared.IsUniqueViolation(err) {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// CreateSession persists a new login session in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_sessions (id, user_id, created_at, expires_at, ip, user_agent)
VALUES ($1, $2, now(), $3, NULLIF($4, ''), NULLIF($5, ''))
ON CONFLICT (id) DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at`,
		id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_sessions WHERE id = $1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)
