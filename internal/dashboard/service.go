// Package dashboard assembles the landing page summary for the signed-in role.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/catalogdesk/internal/audit"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

// RecentLogCount is how many log entries the summary carries.
const RecentLogCount = 5

// Counter reports the size of one resource.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(ctx context.Context) (int, error)

// Count implements Counter.
func (f CounterFunc) Count(ctx context.Context) (int, error) { return f(ctx) }

// LogSource supplies the newest activity log entries.
type LogSource interface {
	Recent(ctx context.Context, n int) ([]audit.Entry, error)
}

// Stats is the dashboard summary. Counts only carries resources the role may
// read; RecentLogs is nil without read access to logs.
type Stats struct {
	Counts     map[rbac.Resource]int `json:"counts"`
	RecentLogs []audit.Entry         `json:"recent_logs,omitempty"`
}

// Service computes Stats.
type Service struct {
	counters map[rbac.Resource]Counter
	logs     LogSource
	cache    *Cache
}

// NewService builds a Service. Resources without a counter are left out of
// the summary.
func NewService(counters map[rbac.Resource]Counter, logs LogSource) *Service {
	return &Service{counters: counters, logs: logs}
}

// WithCache serves summaries through c. Summaries are cached per role.
func (s *Service) WithCache(c *Cache) *Service {
	s.cache = c
	return s
}

// Stats returns the summary for role, from the cache when one is configured.
func (s *Service) Stats(ctx context.Context, role rbac.Role) (Stats, error) {
	if s.cache == nil {
		return s.compute(ctx, role)
	}
	key, err := s.cache.BuildKey(ctx, "catalogdesk", "dashboard", "stats", string(role))
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard: cache key: %w", err)
	}
	var stats Stats
	err = s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (any, error) {
		return s.compute(ctx, role)
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// compute fetches every permitted count concurrently. Any failure fails the
// whole summary.
func (s *Service) compute(ctx context.Context, role rbac.Role) (Stats, error) {
	stats := Stats{Counts: make(map[rbac.Resource]int)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for resource, counter := range s.counters {
		if counter == nil || !rbac.HasPermission(role, rbac.ActionRead, resource) {
			continue
		}
		resource, counter := resource, counter
		g.Go(func() error {
			n, err := counter.Count(gctx)
			if err != nil {
				return fmt.Errorf("dashboard: count %s: %w", resource, err)
			}
			mu.Lock()
			stats.Counts[resource] = n
			mu.Unlock()
			return nil
		})
	}
	if s.logs != nil && rbac.HasPermission(role, rbac.ActionRead, rbac.ResourceLogs) {
		g.Go(func() error {
			entries, err := s.logs.Recent(gctx, RecentLogCount)
			if err != nil {
				return fmt.Errorf("dashboard: recent logs: %w", err)
			}
			stats.RecentLogs = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
