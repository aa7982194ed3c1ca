package repository

import (
	"context"
	"errors"
	"time"

	"filament-inventory-api/internal/model"
)

// ErrNotFound is returned when a statement addressed an id that does not exist.
var ErrNotFound = errors.New("filament not found")

// FilamentRepository defines filament data access methods.
// Every method is a single atomic statement against the store.
type FilamentRepository interface {
	// List returns every filament ordered by brand, then color.
	List(ctx context.Context) ([]model.Filament, error)

	// Get returns one filament or ErrNotFound.
	Get(ctx context.Context, id int64) (*model.Filament, error)

	// Create inserts a filament stamped with at as both created_at and updated_at.
	Create(ctx context.Context, d model.Draft, at time.Time) (*model.Filament, error)

	// Update overwrites the editable fields of id and sets updated_at to at.
	// Returns ErrNotFound when no row was affected.
	Update(ctx context.Context, id int64, d model.Draft, at time.Time) (*model.Filament, error)

	// Delete removes id. Returns ErrNotFound when no row was affected.
	Delete(ctx context.Context, id int64) error

	// GetStats returns statistics about the filament table.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the repository connection.
	Close() error
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// rowsAffected converts a zero-row result into ErrNotFound.
func rowsAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
