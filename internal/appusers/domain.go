package appusers

import "time"

// AppUser is an account registered through the mobile app. Staff approve an
// account by marking it authenticated.
type AppUser struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Company         string    `json:"company"`
	IsAuthenticated bool      `json:"is_authenticated"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateInput toggles the approval flag.
type UpdateInput struct {
	IsAuthenticated *bool `json:"is_authenticated" validate:"required"`
}

// ListFilter narrows the listing. Authenticated filters on the approval flag
// when set.
type ListFilter struct {
	Search        string
	Authenticated *bool
	Page          int
	PerPage       int
}
