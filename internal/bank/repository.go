package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nerrad567/fontsound-core/internal/fontsound"
)

// Repository persists banks.
type Repository interface {
	// Create stores b. Returns ErrExists if b.ID is already stored.
	Create(ctx context.Context, b *Bank) error

	// GetByID loads a bank with its sounds.
	// Returns ErrNotFound if the bank does not exist.
	GetByID(ctx context.Context, id string) (*Bank, error)

	// List returns every bank ordered by name.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a bank and its sounds.
	// Returns ErrNotFound if the bank does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository on the banks and bank_sounds tables.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const soundColumns = `source_id, sample_start, sample_end, loop_start, loop_end,
	sample_rate, pitch_key, pitch_correction, sample_type,
	min_key, max_key, min_velocity, max_velocity, link_id`

// Create stores the bank and all of its sounds in one transaction.
func (r *SQLiteRepository) Create(ctx context.Context, b *Bank) error {
	if err := ValidateName(b.Name); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx,
		`INSERT INTO banks (id, name, device, sound_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Device, len(b.Sounds), b.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintError(err) {
			return ErrExists
		}
		return fmt.Errorf("inserting bank: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bank_sounds (bank_id, position, `+soundColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing sound insert: %w", err)
	}
	defer stmt.Close()

	for pos, s := range b.Sounds {
		if _, err := stmt.ExecContext(ctx,
			b.ID, pos, s.ID, s.Start, s.End, s.LoopStart, s.LoopEnd,
			s.SampleRate, s.PitchKey, s.PitchCorrection, int32(s.SampleType),
			s.KeyRange.Min, s.KeyRange.Max, s.VelocityRange.Min, s.VelocityRange.Max, s.LinkID,
		); err != nil {
			return fmt.Errorf("inserting sound %d: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bank: %w", err)
	}
	return nil
}

// GetByID loads a bank and its sounds in capture order.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Bank, error) {
	var (
		b         Bank
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, device, created_at FROM banks WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Device, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying bank by id: %w", err)
	}
	b.Version = FormatVersion
	b.CreatedAt = parseTime(createdAt)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+soundColumns+` FROM bank_sounds WHERE bank_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying bank sounds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s          fontsound.Snapshot
			sampleType int32
		)
		if err := rows.Scan(&s.ID, &s.Start, &s.End, &s.LoopStart, &s.LoopEnd,
			&s.SampleRate, &s.PitchKey, &s.PitchCorrection, &sampleType,
			&s.KeyRange.Min, &s.KeyRange.Max, &s.VelocityRange.Min, &s.VelocityRange.Max, &s.LinkID,
		); err != nil {
			return nil, fmt.Errorf("scanning bank sound: %w", err)
		}
		s.SampleType = fontsound.SampleType(sampleType)
		b.Sounds = append(b.Sounds, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bank sounds: %w", err)
	}
	return &b, nil
}

// List returns bank summaries ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, device, sound_count, created_at FROM banks ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying banks: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			s         Summary
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Device, &s.SoundCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning bank: %w", err)
		}
		s.CreatedAt = parseTime(createdAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating banks: %w", err)
	}
	return out, nil
}

// Delete removes a bank; its sounds go with it through the foreign key.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM banks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting bank: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// isConstraintError reports a primary-key or unique violation.
func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s) //nolint:errcheck // written by Create
	return t
}
