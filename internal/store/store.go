// Package store persists finished prescriptions. The only production
// implementation is [PostgresStore]; the [Store] interface exists so the
// command layer and tests can swap in fakes.
package store

import (
	"context"

	"github.com/MrWong99/rxtract/internal/pipeline"
)

// Saved is a persisted prescription with its storage identity.
type Saved struct {
	// ID is the storage-assigned identifier.
	ID string `json:"id"`

	pipeline.Prescription
}

// Store is the persistence interface for prescriptions.
type Store interface {
	// Save persists a prescription and returns its assigned ID.
	Save(ctx context.Context, p *pipeline.Prescription) (string, error)

	// Get retrieves a prescription by ID. Returns (nil, nil) when no
	// prescription with the given ID exists.
	Get(ctx context.Context, id string) (*Saved, error)

	// List returns the most recent prescriptions, newest first, optionally
	// filtered by patient name. limit <= 0 means a default page size.
	List(ctx context.Context, patientName string, limit int) ([]Saved, error)

	// Delete removes a prescription by ID. Deleting a non-existent
	// prescription is not an error.
	Delete(ctx context.Context, id string) error
}
