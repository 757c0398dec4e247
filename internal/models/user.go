package models

import "time"

type User struct {
	UserID       int       `json:"id"`
	Username     string    `json:"username" validate:"required,min=3,max=100"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserUpdate carries a partial update; nil fields are left untouched.
// PasswordHash must already be hashed by the caller.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
}
