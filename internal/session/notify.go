package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

// NoticeKind selects how the frontend renders a notice.
type NoticeKind string

// Notice kinds.
const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeWarning NoticeKind = "warning"
	NoticeInfo    NoticeKind = "info"
)

// Display durations.
const (
	RoleNoticeDuration     = 7 * time.Second
	DisabledNoticeDuration = 3 * time.Second
)

// Notice is a transient message for the user.
type Notice struct {
	ID         string     `json:"id"`
	Kind       NoticeKind `json:"type"`
	Message    string     `json:"message"`
	DurationMS int64      `json:"duration"`
	CreatedAt  time.Time  `json:"created_at"`
}

func newNotice(kind NoticeKind, message string, d time.Duration) Notice {
	return Notice{
		ID:         uuid.NewString(),
		Kind:       kind,
		Message:    message,
		DurationMS: d.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
}

var upper = cases.Upper(language.English)

// RoleChangedNotice announces a new role.
func RoleChangedNotice(role rbac.Role) Notice {
	return newNotice(NoticeInfo, "Your role has been updated to: "+upper.String(string(role)), RoleNoticeDuration)
}

// DisabledNotice announces the pending forced logout.
func DisabledNotice() Notice {
	return newNotice(NoticeError, "Your account has been disabled. You will be logged out.", DisabledNoticeDuration)
}

// Notifiers fans a notice out to several notifiers in order.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(ctx context.Context, n Notice) {
	for _, notifier := range ns {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// LogNotifier mirrors notices to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(ctx context.Context, n Notice) {
	if l.Logger == nil {
		return
	}
	l.Logger.InfoContext(ctx, "session notice",
		slog.String("kind", string(n.Kind)),
		slog.String("message", n.Message),
	)
}

const outboxLimit = 20

// Outbox queues notices until the frontend collects them. The oldest notice
// is dropped once the queue is full.
type Outbox struct {
	mu      sync.Mutex
	pending []Notice
}

// Notify implements Notifier.
func (o *Outbox) Notify(_ context.Context, n Notice) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pending) >= outboxLimit {
		o.pending = o.pending[1:]
	}
	o.pending = append(o.pending, n)
}

// Drain returns queued notices in arrival order and empties the queue.
func (o *Outbox) Drain() []Notice {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.pending
	o.pending = nil
	if out == nil {
		return []Notice{}
	}
	return out
}

// Len reports the number of queued notices.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}
