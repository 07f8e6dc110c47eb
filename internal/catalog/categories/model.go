package categories

import "time"

type Category struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryInput struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}
