package announcements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// Repository persists announcements in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id::text, kind, name, description, image, link, created_at, updated_at`

func scan(row pgx.Row) (Announcement, error) {
	var (
		a    Announcement
		kind string
		link []byte
	)
	if err := row.Scan(&a.ID, &kind, &a.Name, &a.Description, &a.Image, &link, &a.Time, &a.UpdatedAt); err != nil {
		return Announcement{}, err
	}
	a.Kind = Kind(kind)
	if len(link) > 0 && string(link) != "null" {
		a.Link = &Link{}
		if err := json.Unmarshal(link, a.Link); err != nil {
			return Announcement{}, fmt.Errorf("decode link: %w", err)
		}
	}
	return a, nil
}

func encodeLink(link *Link) ([]byte, error) {
	if link == nil {
		return nil, nil
	}
	return json.Marshal(link)
}

// List returns every announcement of kind, newest first.
func (r *Repository) List(ctx context.Context, kind Kind, limit, offset int) ([]Announcement, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM announcements WHERE kind = $1`, string(kind)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM announcements WHERE kind = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		string(kind), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]Announcement, 0, limit)
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// Get loads one announcement of kind.
func (r *Repository) Get(ctx context.Context, kind Kind, id string) (Announcement, error) {
	a, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM announcements WHERE kind = $1 AND id::text = $2`, string(kind), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Announcement{}, shared.ErrNotFound
	}
	return a, err
}

// Create stores a new announcement.
func (r *Repository) Create(ctx context.Context, a Announcement) (Announcement, error) {
	link, err := encodeLink(a.Link)
	if err != nil {
		return Announcement{}, err
	}
	return scan(r.pool.QueryRow(ctx, `INSERT INTO announcements (kind, name, description, image, link)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+columns, string(a.Kind), a.Name, a.Description, a.Image, link))
}

// Update overwrites the editable fields.
func (r *Repository) Update(ctx context.Context, a Announcement) (Announcement, error) {
	link, err := encodeLink(a.Link)
	if err != nil {
		return Announcement{}, err
	}
	updated, err := scan(r.pool.QueryRow(ctx, `UPDATE announcements SET name = $3, description = $4, image = $5, link = $6, updated_at = now()
WHERE kind = $1 AND id::text = $2
RETURNING `+columns, string(a.Kind), a.ID, a.Name, a.Description, a.Image, link))
	if errors.Is(err, pgx.ErrNoRows) {
		return Announcement{}, shared.ErrNotFound
	}
	return updated, err
}

// Delete removes an announcement.
func (r *Repository) Delete(ctx context.Context, kind Kind, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE kind = $1 AND id::text = $2`, string(kind), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of announcements of kind.
func (r *Repository) Count(ctx context.Context, kind Kind) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM announcements WHERE kind = $1`, string(kind)).Scan(&n)
	return n, err
}

var _ RepositoryPort = (*Repository)(nil)
