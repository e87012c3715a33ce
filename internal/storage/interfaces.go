package storage

import (
	"context"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// EventStore provides access to the raw interaction log.
type EventStore interface {
	// InsertBulk appends events to the log.
	InsertBulk(ctx context.Context, events []*domain.Event) error

	// GetAllOrdered retrieves the full log in stream order
	// (timestamp ASC, insertion order for ties).
	GetAllOrdered(ctx context.Context) ([]*domain.Event, error)
}

// FeatureRecordStore provides access to the emitted feature table.
type FeatureRecordStore interface {
	// InsertBulk appends feature records in emission order.
	InsertBulk(ctx context.Context, records []*domain.FeatureRecord) error

	// GetByClickoutID retrieves all candidate rows of one clickout,
	// ordered by rank ASC.
	GetByClickoutID(ctx context.Context, clickoutID string) ([]*domain.FeatureRecord, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)
}
