package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/catalogdesk/internal/jobs"
	"github.com/odyssey-erp/catalogdesk/internal/mailer"
)

// MailJob delivers TaskTypeSendEmail tasks.
type MailJob struct {
	Sender  mailer.Sender
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewMailJob wires dependencies for the mail handler.
func NewMailJob(sender mailer.Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *MailJob {
	return &MailJob{Sender: sender, Logger: logger, Metrics: metrics}
}

// Handle processes send-email tasks. Malformed payloads and a missing SMTP
// host are not retried.
func (j *MailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Sender == nil {
		return errors.New("mail job: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("mail job: decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskTypeSendEmail)
	logger := j.logger().With(slog.String("to", payload.To))
	err := j.Sender.Send(ctx, mailer.Message{To: payload.To, Subject: payload.Subject, Body: payload.Body})
	if err != nil {
		logger.Error("send mail", slog.Any("error", err))
		if errors.Is(err, mailer.ErrNotConfigured) {
			err = fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return tracker.End(err)
	}
	logger.Info("mail sent", slog.String("subject", payload.Subject))
	return tracker.End(nil)
}

func (j *MailJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
