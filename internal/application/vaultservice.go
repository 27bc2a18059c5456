package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yurizz-crypto/passvault/internal/crypto"
	"github.com/yurizz-crypto/passvault/internal/domain/model"
	"github.com/yurizz-crypto/passvault/internal/domain/port/driven"
)

// VaultService implements the credential operations of the API: create, get,
// list, update, delete, all scoped to an authenticated owner. Secrets are
// encrypted before they reach the record store and decrypted only on an
// explicit reveal. The service trusts the owner id it is handed; resolving a
// request to an identity is the HTTP adapter's job.
type VaultService struct {
	records driven.RecordStore
	key     []byte
	logger  *slog.Logger
}

// NewVaultService creates a VaultService. key must be the 32-byte key from
// the keystore; it is held read-only for the life of the process.
func NewVaultService(records driven.RecordStore, key []byte, logger *slog.Logger) *VaultService {
	return &VaultService{
		records: records,
		key:     key,
		logger:  logger,
	}
}

// CreateRecordInput carries the fields of a create request.
type CreateRecordInput struct {
	SiteName string
	SiteURL  string
	Username string
	Notes    string
	Secret   string
}

// UpdateRecordInput carries the fields of an update request. Metadata is
// replaced unconditionally; Secret replaces the stored ciphertext only when
// non-empty — an empty Secret means "keep the existing secret", not "clear it".
type UpdateRecordInput struct {
	SiteName string
	SiteURL  string
	Username string
	Notes    string
	Secret   string
}

// RevealedSecret is the decrypted secret of a record. Unreadable marks a
// record whose ciphertext no longer decrypts under the current key; the read
// itself still succeeds so the owner can see the record exists.
type RevealedSecret struct {
	Value      string
	Unreadable bool
}

// Create validates the input, encrypts the secret, and persists a new record.
// The returned record carries ciphertext, never plaintext.
func (s *VaultService) Create(ctx context.Context, ownerID uuid.UUID, input CreateRecordInput) (*model.PasswordRecord, error) {
	if err := validateRecordInput(input.SiteName, input.Username); err != nil {
		return nil, err
	}
	if input.Secret == "" {
		return nil, newValidationError("password", "password is required")
	}

	ciphertext, err := crypto.Encrypt([]byte(input.Secret), s.key)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := model.PasswordRecord{
		ID:         uuid.New(),
		UserID:     ownerID,
		SiteName:   input.SiteName,
		SiteURL:    input.SiteURL,
		Username:   input.Username,
		Notes:      input.Notes,
		Ciphertext: ciphertext,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

// Get returns a record by id. With reveal set, the secret is decrypted and
// returned alongside; a ciphertext that fails to decrypt comes back as
// Unreadable rather than failing the read. Records owned by other accounts
// surface as driven.ErrRecordNotFound.
func (s *VaultService) Get(ctx context.Context, ownerID, id uuid.UUID, reveal bool) (*model.PasswordRecord, *RevealedSecret, error) {
	rec, err := s.records.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, nil, err
	}

	if !reveal {
		return rec, nil, nil
	}

	return rec, s.reveal(rec), nil
}

// List returns the owner's records in creation order. Secrets are never
// decrypted on list.
func (s *VaultService) List(ctx context.Context, ownerID uuid.UUID) ([]model.PasswordRecord, error) {
	return s.records.ListByOwner(ctx, ownerID)
}

// Update replaces a record's metadata and, when input.Secret is non-empty,
// re-encrypts the secret. UpdatedAt is refreshed either way.
func (s *VaultService) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateRecordInput) (*model.PasswordRecord, error) {
	if err := validateRecordInput(input.SiteName, input.Username); err != nil {
		return nil, err
	}

	rec, err := s.records.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	rec.SiteName = input.SiteName
	rec.SiteURL = input.SiteURL
	rec.Username = input.Username
	rec.Notes = input.Notes
	rec.UpdatedAt = time.Now().UTC()

	if input.Secret != "" {
		ciphertext, err := crypto.Encrypt([]byte(input.Secret), s.key)
		if err != nil {
			return nil, err
		}
		rec.Ciphertext = ciphertext
	}

	if err := s.records.Update(ctx, *rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// Delete removes a record. Removal is immediate and unrecoverable.
func (s *VaultService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.records.Delete(ctx, ownerID, id)
}

// reveal decrypts a record's ciphertext. Failure downgrades to an Unreadable
// result: the stored blob cannot be repaired by retrying, so the owner gets
// the record with the secret marked unusable and the failure is logged.
func (s *VaultService) reveal(rec *model.PasswordRecord) *RevealedSecret {
	plaintext, err := crypto.Decrypt(rec.Ciphertext, s.key)
	if err != nil {
		s.logger.Warn("stored secret failed to decrypt",
			"record_id", rec.ID,
			"error", err,
		)
		return &RevealedSecret{Unreadable: true}
	}

	return &RevealedSecret{Value: string(plaintext)}
}

func validateRecordInput(siteName, username string) error {
	if siteName == "" {
		return newValidationError("site_name", "site name is required")
	}
	if username == "" {
		return newValidationError("username", "username is required")
	}
	return nil
}
