package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
	"github.com/csy1204/recsys-2019-conf-ver/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// InsertBulk appends events to the log in one transaction.
func (s *EventStore) InsertBulk(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if e == nil || e.UserID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]any, len(events))
	for i, e := range events {
		rows[i] = []any{
			e.UserID, e.SessionID, e.Timestamp, string(e.ActionType), e.Reference,
			e.ImpressionsRaw, e.PricesRaw, e.FakeImpressionsRaw, e.CurrentFilters,
			e.Step, e.StepFromEnd, e.MaxStep, e.Platform, e.IsTest,
		}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"events"},
		[]string{
			"user_id", "session_id", "ts", "action_type", "reference",
			"impressions", "prices", "fake_impressions", "current_filters",
			"step", "step_from_end", "max_step", "platform", "is_test",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAllOrdered retrieves the full log in stream order
// (ts ASC, insertion id ASC for ties).
func (s *EventStore) GetAllOrdered(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT user_id, session_id, ts, action_type, reference,
		       impressions, prices, fake_impressions, current_filters,
		       step, step_from_end, max_step, platform, is_test
		FROM events
		ORDER BY ts ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var e domain.Event
		var actionType string
		err := rows.Scan(
			&e.UserID, &e.SessionID, &e.Timestamp, &actionType, &e.Reference,
			&e.ImpressionsRaw, &e.PricesRaw, &e.FakeImpressionsRaw, &e.CurrentFilters,
			&e.Step, &e.StepFromEnd, &e.MaxStep, &e.Platform, &e.IsTest,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.ActionType = domain.ActionType(actionType)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
