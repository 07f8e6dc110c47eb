package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/catalogdesk/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	if redisAddr == "" {
		return nil, errors.New("jobs cli: redis address required")
	}
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: redisAddr})
	return &JobsCLI{client: client, inspector: inspector}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// Run dispatches a jobs subcommand and returns the process exit code.
func (c *JobsCLI) Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "usage: catalogdesk jobs <stats|scheduled|test-mail RECIPIENT>")
		return 2
	}

	switch args[0] {
	case "stats":
		stats, err := c.InspectQueue(ctx)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "jobs stats: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(stdout, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	case "scheduled":
		tasks, err := c.ListScheduled(ctx, 20)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "jobs scheduled: %v\n", err)
			return 1
		}
		for _, task := range tasks {
			_, _ = fmt.Fprintf(stdout, "%s\t%s\t%s\n", task.ID, task.Type, task.NextProcessAt.Format("2006-01-02T15:04:05Z07:00"))
		}
	case "test-mail":
		recipient := ""
		if len(args) > 1 {
			recipient = args[1]
		}
		info, err := c.Trigger(ctx, jobs.TaskTypeSendEmail, recipient)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "jobs test-mail: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(stdout, "enqueued %s on %s\n", info.ID, info.Queue)
	default:
		_, _ = fmt.Fprintf(stderr, "jobs: unknown command %q\n", args[0])
		return 2
	}
	return 0
}

// Trigger enqueues a supported job by name. For mail:send the target is the
// recipient of a fixed test message.
func (c *JobsCLI) Trigger(ctx context.Context, name, target string) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	var task *asynq.Task
	var err error
	switch name {
	case jobs.TaskTypeSendEmail:
		task, err = jobs.NewSendEmailTask(jobs.SendEmailPayload{
			To:      target,
			Subject: "Catalog Desk test message",
			Body:    "This is a test message from Catalog Desk. Mail delivery is working.",
		})
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault))
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue(ctx context.Context) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = int(info.Pending)
		stats.Active = int(info.Active)
		stats.Scheduled = int(info.Scheduled)
		stats.Retry = int(info.Retry)
	}
	return stats, nil
}

// ListScheduled returns scheduled task infos for observability.
func (c *JobsCLI) ListScheduled(ctx context.Context, size int) ([]*asynq.TaskInfo, error) {
	if c == nil || c.inspector == nil {
		return nil, errors.New("jobs cli: inspector not configured")
	}
	if size <= 0 {
		size = 10
	}
	return c.inspector.ListScheduledTasks(jobs.QueueDefault, asynq.PageSize(size), asynq.Page(1))
}
