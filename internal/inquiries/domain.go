package inquiries

import "time"

// Status is the staff handling state of an inquiry.
type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// Inquiry is a customer request about one or more products.
type Inquiry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	ProductIDs []string  `json:"product_ids"`
	Message    string    `json:"message"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SubmitInput is the public submission payload.
type SubmitInput struct {
	Name       string   `json:"name" validate:"required,max=200"`
	Email      string   `json:"email" validate:"required,email"`
	Phone      string   `json:"phone" validate:"required,max=50"`
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,required"`
	Message    string   `json:"message" validate:"required,max=5000"`
}

// StatusInput changes the handling state.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=open resolved"`
}

// ListFilter narrows the staff listing.
type ListFilter struct {
	Status  Status
	Page    int
	PerPage int
}
