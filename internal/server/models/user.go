// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash holds the encoded argon2id hash
// and must never leave the server.
type User struct {
	ID           uuid.UUID `db:"id"`
	UserName     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     *string   `db:"full_name"`
	Bio          *string   `db:"bio"`
	AvatarKey    *string   `db:"avatar_key"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ProfileUpdate lists the profile fields a user may change. Nil fields are
// left as they are.
type ProfileUpdate struct {
	FullName *string
	Bio      *string
}
