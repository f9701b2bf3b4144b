package users

import "time"

type Role string

const (
	RoleUser   Role = "user"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

func (u User) Identity() string { return u.ID }

// ListParams filters the admin user list.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Role   Role
}
