package announcements

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/catalogdesk/internal/platform/httpx"
	"github.com/odyssey-erp/catalogdesk/internal/rbac"
)

// Kind separates push notifications from "what's new" posts. Both share the
// same shape and table.
type Kind string

const (
	KindNotification Kind = "notification"
	KindWhatsNew     Kind = "whats_new"
)

// Resource returns the permission resource gating the kind.
func (k Kind) Resource() rbac.Resource {
	if k == KindWhatsNew {
		return rbac.ResourceWhatsNew
	}
	return rbac.ResourceNotifications
}

// LinkType tells the app how to follow a link.
type LinkType string

const (
	LinkURL    LinkType = "url"
	LinkScreen LinkType = "screen"
)

// Link points at a web page or an in-app screen.
type Link struct {
	Type   LinkType          `json:"type" validate:"required,oneof=url screen"`
	URL    string            `json:"url,omitempty" validate:"omitempty,url"`
	Screen string            `json:"screen,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// check enforces the target field matching the link type.
func (l *Link) check() error {
	if l == nil {
		return nil
	}
	switch l.Type {
	case LinkURL:
		if l.URL == "" {
			return fmt.Errorf("%w: url link requires url", httpx.ErrValidation)
		}
	case LinkScreen:
		if l.Screen == "" {
			return fmt.Errorf("%w: screen link requires screen", httpx.ErrValidation)
		}
	}
	return nil
}

// Announcement is one notification or what's new post.
type Announcement struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Link        *Link     `json:"link,omitempty"`
	Time        time.Time `json:"time"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input is the create and update payload.
type Input struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
	Image       string `json:"image" validate:"omitempty,url"`
	Link        *Link  `json:"link" validate:"omitempty"`
}
