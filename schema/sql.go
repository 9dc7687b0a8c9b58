package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLSource stores contract documents in a SQL table, keyed by the textual
// schema reference. It works with any database/sql driver; deployments that
// already run Postgres or MySQL for the rest of the pipeline can keep their
// schema registry there too.
//
// Expected table:
//
//	CREATE TABLE schemas (
//	    ref TEXT PRIMARY KEY,
//	    document TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
//
// The database handle is owned by the caller; Close does not close it.
//
// Example:
//
//	db, _ := sql.Open("postgres", connString)
//	source := schema.NewSQLSource(db)
//	validator := schema.NewJSONValidator(source)
type SQLSource struct {
	db    *sql.DB
	table string
}

// SQLOption configures SQLSource.
type SQLOption func(*SQLSource)

// WithTable sets a custom table name (default "schemas").
func WithTable(table string) SQLOption {
	return func(s *SQLSource) {
		if table != "" {
			s.table = table
		}
	}
}

// NewSQLSource creates a SQL-backed schema source.
func NewSQLSource(db *sql.DB, opts ...SQLOption) *SQLSource {
	s := &SQLSource{db: db, table: "schemas"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the document stored for ref.
func (s *SQLSource) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	query := fmt.Sprintf("SELECT document FROM %s WHERE ref = $1", s.table)
	var document string
	err := s.db.QueryRowContext(ctx, query, ref.String()).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch schema %s: %w", ref, err)
	}
	return []byte(document), nil
}

// Register stores document for ref, replacing any previous revision.
func (s *SQLSource) Register(ctx context.Context, ref Ref, document []byte) error {
	if ref.IsZero() {
		return fmt.Errorf("%w: empty ref", ErrMalformedRef)
	}
	if len(document) == 0 {
		return ErrEmptyDocument
	}

	query := fmt.Sprintf(`INSERT INTO %s (ref, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (ref) DO UPDATE SET document = $2, updated_at = $3`, s.table)
	if _, err := s.db.ExecContext(ctx, query, ref.String(), string(document), time.Now().UTC()); err != nil {
		return fmt.Errorf("register schema %s: %w", ref, err)
	}
	return nil
}

// Close is a no-op; the database handle belongs to the caller.
func (s *SQLSource) Close() error {
	return nil
}

// Compile-time check.
var _ Source = (*SQLSource)(nil)
