package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	exportLimit     = 5000
)

// Service mengoordinasikan pencatatan dan pembacaan activity log.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService membuat service audit baru.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record appends an entry attributed to the principal in ctx.
func (s *Service) Record(ctx context.Context, action string, details map[string]any) error {
	if s.repo == nil {
		return fmt.Errorf("audit: repository not configured")
	}
	entry := Entry{
		Actor:     ActorFromContext(ctx),
		Action:    action,
		Details:   details,
		Timestamp: s.now().UTC(),
	}
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}
	if _, err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "audit record failed", slog.String("action", action), slog.Any("error", err))
		return fmt.Errorf("audit: record: %w", err)
	}
	return nil
}

// List mengambil log terbaru lebih dulu dengan keyset cursor.
func (s *Service) List(ctx context.Context, filters ListFilters) (Page, error) {
	if s.repo == nil {
		return Page{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	before, err := decodeCursor(filters.Cursor)
	if err != nil {
		return Page{}, err
	}
	rows, err := s.repo.List(ctx, Query{
		Actor:  strings.TrimSpace(filters.Actor),
		Action: strings.TrimSpace(filters.Action),
		Before: before,
		Limit:  pageSize + 1,
	})
	if err != nil {
		return Page{}, fmt.Errorf("audit: list: %w", err)
	}
	page := Page{Entries: rows}
	if len(rows) > pageSize {
		page.Entries = rows[:pageSize]
		page.NextCursor = encodeCursor(page.Entries[pageSize-1])
	}
	if page.Entries == nil {
		page.Entries = []Entry{}
	}
	return page, nil
}

// Recent returns the n newest entries.
func (s *Service) Recent(ctx context.Context, n int) ([]Entry, error) {
	page, err := s.List(ctx, ListFilters{PageSize: n})
	if err != nil {
		return nil, err
	}
	return page.Entries, nil
}

// Count returns the total number of entries.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Export mengambil log tanpa paging, dibatasi exportLimit baris.
func (s *Service) Export(ctx context.Context, filters ListFilters) ([]Entry, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	rows, err := s.repo.List(ctx, Query{
		Actor:  strings.TrimSpace(filters.Actor),
		Action: strings.TrimSpace(filters.Action),
		Limit:  exportLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("audit: export: %w", err)
	}
	return rows, nil
}

// WriteCSV encodes entries as CSV with a header row.
func WriteCSV(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "timestamp", "user", "action", "details"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		details, err := json.Marshal(e.Details)
		if err != nil {
			return nil, err
		}
		if err := w.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.Timestamp.UTC().Format(time.RFC3339),
			e.Actor,
			e.Action,
			string(details),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ Recorder = (*Service)(nil)
