package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"` // Never expose password hash in JSON
	Bio               string    `json:"bio"`
	Avatar            string    `json:"avatar"`
	IsActive          bool      `json:"isActive"`
	PasswordChangedAt time.Time `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// CreateParams carries the fields a new account starts with.
type CreateParams struct {
	Name         string
	Email        string
	PasswordHash string
}

// ProfileUpdate changes the editable profile fields. Nil pointers leave a field untouched.
type ProfileUpdate struct {
	Name   string
	Bio    *string
	Avatar *string
}
