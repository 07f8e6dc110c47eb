package appusers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/catalogdesk/internal/audit"
	"github.com/odyssey-erp/catalogdesk/internal/shared"
	"github.com/odyssey-erp/catalogdesk/jobs"
)

// RepositoryPort defines data access methods for app users.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]AppUser, int, error)
	Get(ctx context.Context, id string) (AppUser, error)
	SetAuthenticated(ctx context.Context, id string, value bool) (AppUser, error)
	Count(ctx context.Context) (int, error)
}

// MailQueue enqueues transactional mail. *jobs.Client satisfies it.
type MailQueue interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

const (
	approvedSubject = "Account authenticated"
	approvedBody    = "Your account has been authenticated. You can now sign in to the app."
)

// Service handles app user approval.
type Service struct {
	repo   RepositoryPort
	mail   MailQueue
	audit  audit.Recorder
	logger *slog.Logger
}

// NewService builds Service instance. mail may be nil, in which case no
// approval mail is queued.
func NewService(repo RepositoryPort, mail MailQueue, recorder audit.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, mail: mail, audit: recorder, logger: logger}
}

// List returns a page of app users.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]AppUser, shared.Pagination, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	users, total, err := s.repo.List(ctx, filter, page.PerPage, page.Offset())
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("appusers: list: %w", err)
	}
	return users, shared.NewPagination(page.Page, page.PerPage, total), nil
}

// Count returns the number of app users.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// SetAuthenticated changes the approval flag. Approving a previously
// unapproved account queues a notification mail; a failed enqueue is logged
// and does not undo the change.
func (s *Service) SetAuthenticated(ctx context.Context, id string, value bool) (AppUser, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return AppUser{}, err
	}
	if current.IsAuthenticated == value {
		return current, nil
	}
	updated, err := s.repo.SetAuthenticated(ctx, id, value)
	if err != nil {
		return AppUser{}, fmt.Errorf("appusers: update: %w", err)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, "app_user_authentication_updated", map[string]any{
			"app_user_id": updated.ID, "email": updated.Email, "is_authenticated": updated.IsAuthenticated,
		})
	}
	if updated.IsAuthenticated && s.mail != nil {
		_, err := s.mail.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
			To:      updated.Email,
			Subject: approvedSubject,
			Body:    approvedBody,
		})
		if err != nil {
			s.logger.Warn("enqueue approval mail", slog.String("app_user_id", updated.ID), slog.Any("error", err))
		}
	}
	return updated, nil
}
