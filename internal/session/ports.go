package session

import "context"

// Store persists the session record of one browser under a fixed key.
type Store interface {
	Load(ctx context.Context) (Record, bool, error)
	Save(ctx context.Context, rec Record) error
	Clear(ctx context.Context) error
}

// Directory looks up the authoritative record. Implementations return
// ErrRecordNotFound when nothing matches.
type Directory interface {
	LookupByEmail(ctx context.Context, email string) (Record, error)
}

// Authenticator verifies credentials and returns the matching record.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (Record, error)
}

// Notifier presents a notice to the user. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Navigator sends the user back to the login view.
type Navigator interface {
	RedirectToLogin(ctx context.Context)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context)

// RedirectToLogin calls f.
func (f NavigatorFunc) RedirectToLogin(ctx context.Context) { f(ctx) }
