package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurizz-crypto/passvault/internal/crypto"
	"github.com/yurizz-crypto/passvault/internal/domain/model"
	"github.com/yurizz-crypto/passvault/internal/domain/port/driven"
)

// --- In-memory RecordStore for VaultService tests ---

type fakeRecordStore struct {
	recs  map[uuid.UUID]model.PasswordRecord
	order []uuid.UUID
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{recs: make(map[uuid.UUID]model.PasswordRecord)}
}

func (f *fakeRecordStore) Create(_ context.Context, rec model.PasswordRecord) error {
	f.recs[rec.ID] = rec
	f.order = append(f.order, rec.ID)
	return nil
}

func (f *fakeRecordStore) GetByID(_ context.Context, ownerID, id uuid.UUID) (*model.PasswordRecord, error) {
	rec, ok := f.recs[id]
	if !ok || rec.UserID != ownerID {
		return nil, driven.ErrRecordNotFound
	}
	copied := rec
	return &copied, nil
}

func (f *fakeRecordStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.PasswordRecord, error) {
	var out []model.PasswordRecord
	for _, id := range f.order {
		if rec, ok := f.recs[id]; ok && rec.UserID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) Update(_ context.Context, rec model.PasswordRecord) error {
	existing, ok := f.recs[rec.ID]
	if !ok || existing.UserID != rec.UserID {
		return driven.ErrRecordNotFound
	}
	f.recs[rec.ID] = rec
	return nil
}

func (f *fakeRecordStore) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	rec, ok := f.recs[id]
	if !ok || rec.UserID != ownerID {
		return driven.ErrRecordNotFound
	}
	delete(f.recs, id)
	return nil
}

// --- Helpers ---

func newTestVault(t *testing.T) (*VaultService, *fakeRecordStore, []byte) {
	t.Helper()

	key := make([]byte, crypto.KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)

	store := newFakeRecordStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewVaultService(store, key, logger), store, key
}

func validInput() CreateRecordInput {
	return CreateRecordInput{
		SiteName: "github",
		SiteURL:  "https://github.com",
		Username: "alice",
		Notes:    "work",
		Secret:   "S3cr3t!",
	}
}

// --- Tests ---

func TestVaultService_CreateEncryptsSecret(t *testing.T) {
	svc, store, key := newTestVault(t)
	owner := uuid.New()

	rec, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	assert.Equal(t, owner, rec.UserID)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	// Stored ciphertext must not contain the plaintext and must decrypt
	// back to it under the vault key.
	stored := store.recs[rec.ID]
	assert.NotContains(t, stored.Ciphertext, "S3cr3t!")

	plaintext, err := crypto.Decrypt(stored.Ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, "S3cr3t!", string(plaintext))
}

func TestVaultService_CreateValidation(t *testing.T) {
	svc, _, _ := newTestVault(t)
	owner := uuid.New()

	cases := []struct {
		name  string
		mut   func(*CreateRecordInput)
		field string
	}{
		{"missing site name", func(in *CreateRecordInput) { in.SiteName = "" }, "site_name"},
		{"missing username", func(in *CreateRecordInput) { in.Username = "" }, "username"},
		{"missing secret", func(in *CreateRecordInput) { in.Secret = "" }, "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mut(&input)

			_, err := svc.Create(context.Background(), owner, input)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestVaultService_GetReveal(t *testing.T) {
	svc, _, _ := newTestVault(t)
	owner := uuid.New()

	rec, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	got, secret, err := svc.Get(context.Background(), owner, rec.ID, true)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	require.NotNil(t, secret)
	assert.False(t, secret.Unreadable)
	assert.Equal(t, "S3cr3t!", secret.Value)
}

func TestVaultService_GetWithoutReveal(t *testing.T) {
	svc, _, _ := newTestVault(t)
	owner := uuid.New()

	rec, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	got, secret, err := svc.Get(context.Background(), owner, rec.ID, false)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Nil(t, secret)
}

func TestVaultService_GetRevealCorruptedCiphertext(t *testing.T) {
	svc, store, _ := newTestVault(t)
	owner := uuid.New()

	rec, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	// Corrupt the stored blob. The read must still succeed, with the secret
	// marked unreadable instead of the whole request failing.
	stored := store.recs[rec.ID]
	raw, err := base64.StdEncoding.DecodeString(stored.Ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	stored.Ciphertext = base64.StdEncoding.EncodeToString(raw)
	store.recs[rec.ID] = stored

	got, secret, err := svc.Get(context.Background(), owner, rec.ID, true)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	require.NotNil(t, secret)
	assert.True(t, secret.Unreadable)
	assert.Empty(t, secret.Value)
}

func TestVaultService_OwnershipIsolation(t *testing.T) {
	svc, _, _ := newTestVault(t)
	ownerA := uuid.New()
	ownerB := uuid.New()

	rec, err := svc.Create(context.Background(), ownerB, validInput())
	require.NoError(t, err)

	_, _, err = svc.Get(context.Background(), ownerA, rec.ID, true)
	assert.ErrorIs(t, err, driven.ErrRecordNotFound)

	err = svc.Delete(context.Background(), ownerA, rec.ID)
	assert.ErrorIs(t, err, driven.ErrRecordNotFound)

	_, err = svc.Update(context.Background(), ownerA, rec.ID, UpdateRecordInput{SiteName: "x", Username: "y"})
	assert.ErrorIs(t, err, driven.ErrRecordNotFound)
}

func TestVaultService_ListNeverDecrypts(t *testing.T) {
	svc, _, _ := newTestVault(t)
	owner := uuid.New()

	first, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	input := validInput()
	input.SiteName = "gitlab"
	second, err := svc.Create(context.Background(), owner, input)
	require.NoError(t, err)

	recs, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, first.ID, recs[0].ID)
	assert.Equal(t, second.ID, recs[1].ID)
}

func TestVaultService_UpdateWithoutSecretKeepsOldSecret(t *testing.T) {
	svc, _, _ := newTestVault(t)
	owner := uuid.New()

	rec, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner, rec.ID, UpdateRecordInput{
		SiteName: "github-renamed",
		Username: "alice",
		Secret:   "",
	})
	require.NoError(t, err)
	assert.Equal(t, "github-renamed", updated.SiteName)
	assert.Equal(t, rec.Ciphertext, updated.Ciphertext, "empty secret must keep the stored ciphertext")
	assert.True(t, updated.UpdatedAt.After(rec.UpdatedAt) || updated.UpdatedAt.Equal(rec.UpdatedAt))

	_, secret, err := svc.Get(context.Background(), owner, rec.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "S3cr3t!", secret.Value)
}

func TestVaultService_UpdateWithSecretReplacesIt(t *testing.T) {
	svc, _, _ := newTestVault(t)
	owner := uuid.New()

	rec, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner, rec.ID, UpdateRecordInput{
		SiteName: "github",
		Username: "alice",
		Secret:   "N3wS3cr3t!",
	})
	require.NoError(t, err)
	assert.NotEqual(t, rec.Ciphertext, updated.Ciphertext)

	_, secret, err := svc.Get(context.Background(), owner, rec.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "N3wS3cr3t!", secret.Value)
}

func TestVaultService_DeleteThenGet(t *testing.T) {
	svc, _, _ := newTestVault(t)
	owner := uuid.New()

	rec, err := svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), owner, rec.ID))

	_, _, err = svc.Get(context.Background(), owner, rec.ID, false)
	assert.ErrorIs(t, err, driven.ErrRecordNotFound)
}
