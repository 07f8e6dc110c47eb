package auth

import (
	"time"

	"github.com/odyssey-erp/catalogdesk/internal/rbac"
	"github.com/odyssey-erp/catalogdesk/internal/session"
)

// User represents a staff account.
type User struct {
	ID                 string
	Email              string
	Name               string
	Phone              string
	Role               rbac.Role
	Status             session.Status
	PasswordHash       string
	EmailNotifications bool
	PushNotifications  bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Record converts the account into the session view of the actor.
func (u User) Record() session.Record {
	return session.Record{
		UID:    u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Phone:  u.Phone,
		Role:   u.Role,
		Status: u.Status,
	}
}

// SignupInput carries a self-service registration.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
}
