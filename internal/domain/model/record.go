package model

import (
	"time"

	"github.com/google/uuid"
)

// PasswordRecord is a stored credential for a single site. The secret itself
// lives only in Ciphertext; all other fields are plaintext metadata with no
// confidentiality requirement.
type PasswordRecord struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	SiteName string
	SiteURL  string
	Username string
	Notes    string

	// Ciphertext is the base64-encoded AES-GCM blob produced by the crypto
	// package. It is never exposed through the HTTP adapter.
	Ciphertext string

	CreatedAt time.Time
	UpdatedAt time.Time
}
