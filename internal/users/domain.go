package users

import (
	"time"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/session"
)

// User is a staff account as shown in user management.
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Phone     string         `json:"phone"`
	Role      rbac.Role      `json:"role"`
	Status    session.Status `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UpdateInput changes role and/or status. Nil fields are left untouched.
type UpdateInput struct {
	Role   *string `json:"role" validate:"omitempty,oneof=master admin user pending"`
	Status *string `json:"status" validate:"omitempty,oneof=active disabled"`
}

// ListFilter narrows the user listing.
type ListFilter struct {
	Search  string
	Role    rbac.Role
	Page    int
	PerPage int
}
