package ports

import (
	"context"

	"github.com/aretw0/fsmgen/pkg/domain"
)

// RecordSink receives the record of every finished refinement session.
type RecordSink interface {
	Append(ctx context.Context, rec domain.Record) error
}

// OutcomeStore keeps records addressable by ID so that runs can be resumed
// and inspected.
type OutcomeStore interface {
	// Save persists the record under rec.ID, replacing any previous version.
	Save(ctx context.Context, rec domain.Record) error

	// Load retrieves a record.
	// Returns domain.ErrRecordNotFound if the record does not exist.
	Load(ctx context.Context, id string) (domain.Record, error)

	// List returns the IDs of all stored records.
	List(ctx context.Context) ([]string, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error
}

// ResultCache memoizes serialized toolchain results.
type ResultCache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
