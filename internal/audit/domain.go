// Package audit menyimpan dan menampilkan jejak aktivitas staf.
package audit

import (
	"context"
	"time"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

// Entry mewakili satu baris activity log.
type Entry struct {
	ID        int64          `json:"id"`
	Actor     string         `json:"user"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	Timestamp time.Time      `json:"timestamp"`
}

// ListFilters menampung filter dan cursor untuk daftar log.
type ListFilters struct {
	Actor    string
	Action   string
	PageSize int
	Cursor   string
}

// Page is one newest-first slice of the log.
type Page struct {
	Entries    []Entry `json:"entries"`
	NextCursor string  `json:"next_cursor,omitempty"`
}

// Recorder appends log entries. Handlers depend on this instead of Service.
type Recorder interface {
	Record(ctx context.Context, action string, details map[string]any) error
}

type emailer interface {
	GetEmail() string
}

// ActorFromContext names the principal for log entries, preferring the
// sign-in email over the id.
func ActorFromContext(ctx context.Context) string {
	p, ok := rbac.PrincipalFromContext(ctx)
	if !ok {
		return "anonymous"
	}
	if e, ok := p.(emailer); ok && e.GetEmail() != "" {
		return e.GetEmail()
	}
	return p.GetID()
}
