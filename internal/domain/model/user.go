package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns password records. PasswordHash and
// PasswordSalt hold the Argon2id digest of the login password; the login
// password is unrelated to the record encryption key.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	PasswordHash []byte
	PasswordSalt []byte
	CreatedAt    time.Time
}
