package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yurizz-crypto/passvault/internal/domain/model"
	"github.com/yurizz-crypto/passvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RecordStore = (*RecordRepo)(nil)

// RecordRepo is the SQLite implementation of the RecordStore port interface.
// Ciphertext arrives already encrypted; this layer never sees plaintext
// secrets. Every query filters on user_id so an id owned by another account
// behaves exactly like a missing id.
type RecordRepo struct {
	db *DB
}

// NewRecordRepo creates a new RecordRepo backed by the given DB.
func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// Create inserts a new password record.
func (r *RecordRepo) Create(ctx context.Context, rec model.PasswordRecord) error {
	const query = `INSERT INTO password_records
		(id, user_id, site_name, site_url, username, notes, ciphertext, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		rec.ID.String(),
		rec.UserID.String(),
		rec.SiteName,
		rec.SiteURL,
		rec.Username,
		rec.Notes,
		rec.Ciphertext,
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create password record %s: %w", rec.ID, err)
	}

	return nil
}

// GetByID retrieves a record by id scoped to its owner.
func (r *RecordRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.PasswordRecord, error) {
	const query = `SELECT id, user_id, site_name, site_url, username, notes, ciphertext, created_at, updated_at
		FROM password_records WHERE id = ? AND user_id = ?`

	rec, err := scanRecord(r.db.Reader.QueryRowContext(ctx, query, id.String(), ownerID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get password record %s: %w", id, driven.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get password record %s: %w", id, err)
	}

	return rec, nil
}

// ListByOwner returns all records belonging to ownerID in creation order.
func (r *RecordRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.PasswordRecord, error) {
	const query = `SELECT id, user_id, site_name, site_url, username, notes, ciphertext, created_at, updated_at
		FROM password_records WHERE user_id = ? ORDER BY created_at, id`

	rows, err := r.db.Reader.QueryContext(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list password records: %w", err)
	}
	defer rows.Close()

	var recs []model.PasswordRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan password record: %w", err)
		}
		recs = append(recs, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate password records: %w", err)
	}

	return recs, nil
}

// Update replaces metadata, ciphertext, and updated_at of the record matching
// rec.ID and rec.UserID.
func (r *RecordRepo) Update(ctx context.Context, rec model.PasswordRecord) error {
	const query = `UPDATE password_records
		SET site_name = ?, site_url = ?, username = ?, notes = ?, ciphertext = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query,
		rec.SiteName,
		rec.SiteURL,
		rec.Username,
		rec.Notes,
		rec.Ciphertext,
		formatTime(rec.UpdatedAt),
		rec.ID.String(),
		rec.UserID.String(),
	)
	if err != nil {
		return fmt.Errorf("update password record %s: %w", rec.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update password record %s: %w", rec.ID, driven.ErrRecordNotFound)
	}

	return nil
}

// Delete removes a record by id scoped to its owner. Removal is immediate
// and unrecoverable.
func (r *RecordRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	const query = `DELETE FROM password_records WHERE id = ? AND user_id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("delete password record %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete password record %s: %w", id, driven.ErrRecordNotFound)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*model.PasswordRecord, error) {
	var rec model.PasswordRecord
	var id, userID, createdAt, updatedAt string

	err := s.Scan(&id, &userID, &rec.SiteName, &rec.SiteURL, &rec.Username, &rec.Notes, &rec.Ciphertext, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse record id: %w", err)
	}
	if rec.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("parse record user_id: %w", err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &rec, nil
}

// timeLayout is fixed-width so lexicographic ORDER BY on the stored text
// matches chronological order.
const timeLayout = "2006-01-02 15:04:05.000000000"

// formatTime stores timestamps as fixed-width UTC strings.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		timeLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
