package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrWong99/rxtract/internal/extract"
	"github.com/MrWong99/rxtract/internal/pipeline"
	"github.com/MrWong99/rxtract/internal/routing"
)

// defaultListLimit caps List when the caller passes limit <= 0.
const defaultListLimit = 50

// Schema is the SQL DDL for the prescriptions table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS prescriptions (
    id            TEXT PRIMARY KEY,
    patient_name  TEXT NOT NULL DEFAULT '',
    record        JSONB NOT NULL DEFAULT '{}',
    method        TEXT NOT NULL,
    route         TEXT NOT NULL,
    quality_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    language      TEXT NOT NULL DEFAULT '',
    warnings      JSONB NOT NULL DEFAULT '[]',
    advisory      TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_prescriptions_patient ON prescriptions(patient_name);
CREATE INDEX IF NOT EXISTS idx_prescriptions_created ON prescriptions(created_at DESC);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database. The structured
// record and warnings are serialised as JSONB; routing metadata lives in
// plain columns so it can be queried directly.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the
// prescriptions table and indexes if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Save persists the prescription under a fresh UUID and returns it.
func (s *PostgresStore) Save(ctx context.Context, p *pipeline.Prescription) (string, error) {
	recordJSON, err := json.Marshal(p.Record)
	if err != nil {
		return "", fmt.Errorf("store: marshal record: %w", err)
	}
	warningsJSON, err := json.Marshal(emptySlice(p.Warnings))
	if err != nil {
		return "", fmt.Errorf("store: marshal warnings: %w", err)
	}

	const query = `
		INSERT INTO prescriptions (
			id, patient_name, record, method, route,
			quality_score, language, warnings, advisory, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	id := uuid.NewString()
	_, err = s.db.Exec(ctx, query,
		id, p.Record.PatientName, recordJSON, string(p.Method), string(p.Route),
		p.QualityScore, p.Language, warningsJSON, p.Advisory, p.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("store: save: %w", err)
	}
	return id, nil
}

// Get retrieves a prescription by ID. Returns (nil, nil) when no prescription
// with the given ID exists.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Saved, error) {
	const query = `
		SELECT id, record, method, route, quality_score, language,
		       warnings, advisory, created_at
		FROM prescriptions
		WHERE id = $1`

	saved, err := scanPrescription(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get %q: %w", id, err)
	}
	return saved, nil
}

// List returns the most recent prescriptions, newest first. A non-empty
// patientName filters by exact (case-insensitive) match.
func (s *PostgresStore) List(ctx context.Context, patientName string, limit int) ([]Saved, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		rows pgx.Rows
		err  error
	)
	if patientName == "" {
		const query = `
			SELECT id, record, method, route, quality_score, language,
			       warnings, advisory, created_at
			FROM prescriptions
			ORDER BY created_at DESC
			LIMIT $1`
		rows, err = s.db.Query(ctx, query, limit)
	} else {
		const query = `
			SELECT id, record, method, route, quality_score, language,
			       warnings, advisory, created_at
			FROM prescriptions
			WHERE lower(patient_name) = lower($1)
			ORDER BY created_at DESC
			LIMIT $2`
		rows, err = s.db.Query(ctx, query, patientName, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Saved
	for rows.Next() {
		saved, err := scanPrescription(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		out = append(out, *saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Delete removes a prescription by ID. Deleting a non-existent prescription
// is not an error.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM prescriptions WHERE id = $1`
	if _, err := s.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("store: delete %q: %w", id, err)
	}
	return nil
}

// scanPrescription reads one row into a [Saved]. The row must match the
// column order used by Get and List.
func scanPrescription(row pgx.Row) (*Saved, error) {
	var (
		saved        Saved
		recordJSON   []byte
		warningsJSON []byte
		method       string
		route        string
	)
	err := row.Scan(
		&saved.ID, &recordJSON, &method, &route, &saved.QualityScore,
		&saved.Language, &warningsJSON, &saved.Advisory, &saved.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(recordJSON, &saved.Record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if err := json.Unmarshal(warningsJSON, &saved.Warnings); err != nil {
		return nil, fmt.Errorf("unmarshal warnings: %w", err)
	}
	saved.Method = extract.Method(method)
	saved.Route = routing.Route(route)
	return &saved, nil
}

// emptySlice returns s if non-nil, otherwise an empty non-nil slice. This
// ensures JSON marshalling produces "[]" instead of "null".
func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
