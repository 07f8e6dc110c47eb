// Package session keeps the signed-in staff record of one browser consistent
// with the authoritative user record and terminates the session when the
// account is disabled.
package session

import (
	"errors"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

// Status is the lifecycle flag of a staff account.
type Status string

// Account statuses.
const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

// Record is the locally held view of the signed-in actor. It may be stale
// between reconciliation passes; the user table is authoritative.
type Record struct {
	UID    string    `json:"uid"`
	Email  string    `json:"email"`
	Name   string    `json:"name,omitempty"`
	Phone  string    `json:"phone,omitempty"`
	Role   rbac.Role `json:"role"`
	Status Status    `json:"status"`
}

// GetID implements rbac.Principal.
func (r Record) GetID() string { return r.UID }

// GetEmail returns the sign-in email.
func (r Record) GetEmail() string { return r.Email }

// GetRole implements rbac.Principal.
func (r Record) GetRole() rbac.Role { return r.Role }

// ErrRecordNotFound is returned by a Directory when no record matches.
var ErrRecordNotFound = errors.New("session: record not found")

// State is the reconciliation lifecycle of a Manager.
type State int

// States.
const (
	StateUnauthenticated State = iota
	StateFresh
	StateCheckPending
	StateTerminating
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "authenticated-fresh"
	case StateCheckPending:
		return "authenticated-stale-check-pending"
	case StateTerminating:
		return "terminating"
	default:
		return "unauthenticated"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Authenticated reports whether the state holds a signed-in record.
func (s State) Authenticated() bool {
	return s != StateUnauthenticated
}

// Outcome summarises one reconciliation attempt.
type Outcome string

// Outcomes.
const (
	OutcomeSkipped     Outcome = "skipped"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomeRoleChanged Outcome = "role_changed"
	OutcomeUpdated     Outcome = "updated"
	OutcomeTerminating Outcome = "terminating"
	OutcomeFetchFailed Outcome = "fetch_failed"
	OutcomeDiscarded   Outcome = "discarded"
)
