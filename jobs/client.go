package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client submits tasks to the default queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq-backed Client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// Enqueue submits task. Callers may override the queue through opts.
func (c *Client) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	opts = append([]asynq.Option{asynq.Queue(QueueDefault)}, opts...)
	return c.client.EnqueueContext(ctx, task, opts...)
}

// EnqueueSendEmail builds and submits a mail:send task.
func (c *Client) EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error) {
	task, err := NewSendEmailTask(payload)
	if err != nil {
		return nil, err
	}
	return c.Enqueue(ctx, task)
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
