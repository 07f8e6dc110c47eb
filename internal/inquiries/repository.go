package inquiries

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/catalogdesk/internal/shared"
)

// Repository persists inquiries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const inquiryColumns = `id::text, name, email, phone, product_ids, message, status, created_at, updated_at`

func scanInquiry(row pgx.Row) (Inquiry, error) {
	var (
		in     Inquiry
		status string
	)
	if err := row.Scan(&in.ID, &in.Name, &in.Email, &in.Phone, &in.ProductIDs, &in.Message, &status, &in.CreatedAt, &in.UpdatedAt); err != nil {
		return Inquiry{}, err
	}
	in.Status = Status(status)
	if in.ProductIDs == nil {
		in.ProductIDs = []string{}
	}
	return in, nil
}

// Create stores a new inquiry.
func (r *Repository) Create(ctx context.Context, in Inquiry) (Inquiry, error) {
	return scanInquiry(r.pool.QueryRow(ctx, `INSERT INTO inquiries (name, email, phone, product_ids, message, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+inquiryColumns, in.Name, in.Email, in.Phone, in.ProductIDs, in.Message, string(in.Status)))
}

// List returns a page of inquiries, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Inquiry, int, error) {
	where := ` WHERE ($1 = '' OR status = $1)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM inquiries`+where, string(filter.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+inquiryColumns+` FROM inquiries`+where+` ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		string(filter.Status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]Inquiry, 0, limit)
	for rows.Next() {
		in, err := scanInquiry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, in)
	}
	return out, total, rows.Err()
}

// UpdateStatus sets the handling state.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) (Inquiry, error) {
	in, err := scanInquiry(r.pool.QueryRow(ctx, `UPDATE inquiries SET status = $2, updated_at = now()
WHERE id::text = $1
RETURNING `+inquiryColumns, id, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Inquiry{}, shared.ErrNotFound
	}
	return in, err
}

// Count returns the number of inquiries.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM inquiries`).Scan(&n)
	return n, err
}

var _ RepositoryPort = (*Repository)(nil)
