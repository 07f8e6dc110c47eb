package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence for the activity log.
type Repository interface {
	Insert(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, q Query) ([]Entry, error)
	Count(ctx context.Context) (int64, error)
}

// Query is the storage form of ListFilters.
type Query struct {
	Actor  string
	Action string
	Before *cursor
	Limit  int
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert appends one entry.
func (r *PGRepository) Insert(ctx context.Context, entry Entry) (Entry, error) {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return Entry{}, err
	}
	err = r.pool.QueryRow(ctx, `INSERT INTO audit_logs (actor, action, details, created_at)
VALUES ($1, $2, $3, $4) RETURNING id`, entry.Actor, entry.Action, details, entry.Timestamp).Scan(&entry.ID)
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// List returns entries newest first, strictly older than q.Before.
func (r *PGRepository) List(ctx context.Context, q Query) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if q.Actor != "" {
		args = append(args, q.Actor)
		where = append(where, fmt.Sprintf("actor = $%d", len(args)))
	}
	if q.Action != "" {
		args = append(args, q.Action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	if q.Before != nil {
		args = append(args, q.Before.At, q.Before.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	sql := `SELECT id, actor, action, details, created_at FROM audit_logs`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, q.Limit)
	sql += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var (
			e   Entry
			raw []byte
			at  time.Time
		)
		if err := row.Scan(&e.ID, &e.Actor, &e.Action, &raw, &at); err != nil {
			return Entry{}, err
		}
		e.Timestamp = at.UTC()
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &e.Details); err != nil {
				return Entry{}, err
			}
		}
		return e, nil
	})
}

// Count returns the number of entries.
func (r *PGRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM audit_logs`).Scan(&n)
	return n, err
}

var _ Repository = (*PGRepository)(nil)
