package posts

import "time"

type Post struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Excerpt    string    `json:"excerpt,omitempty"`
	Content    string    `json:"content,omitempty"`
	Category   string    `json:"category,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	CoverImage string    `json:"coverImage,omitempty"`
	Author     string    `json:"author,omitempty"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

func (p Post) Identity() string { return p.ID }

// Input is the create/update payload.
type Input struct {
	Title      string   `json:"title" validate:"required,min=3,max=200"`
	Slug       string   `json:"slug,omitempty" validate:"omitempty,slug"`
	Excerpt    string   `json:"excerpt,omitempty" validate:"max=500"`
	Content    string   `json:"content" validate:"required"`
	Category   string   `json:"category" validate:"required"`
	Tags       []string `json:"tags,omitempty" validate:"max=20,dive,required"`
	CoverImage string   `json:"coverImage,omitempty" validate:"omitempty,url"`
	Published  bool     `json:"published"`
}
