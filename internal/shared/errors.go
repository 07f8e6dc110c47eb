package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled indicates the account exists but was disabled by a master user.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage returns an error message that can be shown to staff without
// leaking storage details.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrAccountDisabled):
		return "Your account has been disabled"
	case errors.Is(err, ErrNotFound):
		return "The requested record does not exist"
	default:
		return "Something went wrong, please try again"
	}
}
