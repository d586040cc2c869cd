// Package history keeps a durable log of served summaries in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const (
	// DefaultListLimit bounds ListRecent when the caller passes zero.
	DefaultListLimit = 20

	// MaxListLimit caps ListRecent.
	MaxListLimit = 500
)

var (
	// ErrNotFound is returned by Get for an unknown id.
	ErrNotFound = errors.New("history record not found")

	// ErrDuplicate is returned when a record id is reused.
	ErrDuplicate = errors.New("history record already exists")
)

// Record is one served summary.
type Record struct {
	ID             uuid.UUID `json:"id"`
	Requested      string    `json:"requested"`
	Method         string    `json:"method"`
	TextDigest     string    `json:"text_digest"`
	InputChars     int       `json:"input_chars"`
	SummaryChars   int       `json:"summary_chars"`
	OverallScore   float64   `json:"overall_score"`
	Degraded       bool      `json:"degraded"`
	DegradedReason string    `json:"degraded_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists Records.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "history")

	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}

	if err := migrateUp(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends rec. A zero ID or CreatedAt is filled in.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (
			id, requested, method, text_digest, input_chars,
			summary_chars, overall_score, degraded, degraded_reason,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Requested, rec.Method, rec.TextDigest,
		rec.InputChars, rec.SummaryChars, rec.OverallScore,
		rec.Degraded, rec.DegradedReason, rec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return mapSQLError(err)
	}

	s.log.DebugContext(ctx, "Recorded summary",
		"id", rec.ID, "method", rec.Method,
	)

	return nil
}

// ListRecent returns up to limit records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, requested, method, text_digest, input_chars,
			summary_chars, overall_score, degraded, degraded_reason,
			created_at
		FROM summaries
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, mapSQLError(err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, requested, method, text_digest, input_chars,
			summary_chars, overall_score, degraded, degraded_reason,
			created_at
		FROM summaries
		WHERE id = ?`, id.String(),
	)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec       Record
		id        string
		createdAt int64
	)
	err := row.Scan(
		&id, &rec.Requested, &rec.Method, &rec.TextDigest,
		&rec.InputChars, &rec.SummaryChars, &rec.OverallScore,
		&rec.Degraded, &rec.DegradedReason, &createdAt,
	)
	if err != nil {
		return Record{}, err
	}

	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return Record{}, fmt.Errorf("corrupt record id %q: %w", id, err)
	}
	rec.CreatedAt = time.Unix(0, createdAt)

	return rec, nil
}

// mapSQLError translates sqlite constraint failures into package errors.
func mapSQLError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	if sqliteErr.Code == sqlite3.ErrConstraint &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique) {

		return fmt.Errorf("%w: %w", ErrDuplicate, sqliteErr)
	}

	return fmt.Errorf("sqlite error: %w", sqliteErr)
}
