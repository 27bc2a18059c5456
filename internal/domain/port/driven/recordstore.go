package driven

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yurizz-crypto/passvault/internal/domain/model"
)

// ErrRecordNotFound indicates no record with the given id is visible to the
// given owner. An id that exists but belongs to someone else surfaces as this
// same error so record existence never leaks across accounts.
var ErrRecordNotFound = errors.New("password record not found")

// RecordStore defines the driven port for password record persistence.
// Every lookup and mutation is scoped to an owner; implementations must
// filter on both id and owner in the same query.
type RecordStore interface {
	// Create inserts a new record. The caller assigns the id and timestamps.
	Create(ctx context.Context, rec model.PasswordRecord) error

	// GetByID retrieves a record by id for the given owner.
	// Returns ErrRecordNotFound if no such record is visible to that owner.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.PasswordRecord, error)

	// ListByOwner returns all of an owner's records in creation order.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.PasswordRecord, error)

	// Update replaces the stored metadata, ciphertext, and updated_at of the
	// record matching rec.ID and rec.UserID. Returns ErrRecordNotFound if
	// nothing matched.
	Update(ctx context.Context, rec model.PasswordRecord) error

	// Delete removes a record by id for the given owner.
	// Returns ErrRecordNotFound if no such record is visible to that owner.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
