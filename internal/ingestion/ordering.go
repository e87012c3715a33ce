package ingestion

import (
	"errors"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// ErrInvalidOrdering is returned when events are not in stream order.
var ErrInvalidOrdering = errors.New("events are not in deterministic order")

// ValidateOrdering checks that timestamps never decrease across the stream
// and that (timestamp, step) never decreases within a session. Accumulator
// causality depends on every shard consuming events in the same total
// order, so loaders validate before handing the stream to the engine.
func ValidateOrdering(events []*domain.Event) error {
	lastStep := make(map[string]int)
	var lastTs int64
	lastSessionTs := make(map[string]int64)

	for _, e := range events {
		if e.Timestamp < lastTs {
			return ErrInvalidOrdering
		}
		lastTs = e.Timestamp

		key := e.UserID + "|" + e.SessionID
		if ts, ok := lastSessionTs[key]; ok {
			if e.Timestamp < ts {
				return ErrInvalidOrdering
			}
			if e.Timestamp == ts && e.Step < lastStep[key] {
				return ErrInvalidOrdering
			}
		}
		lastSessionTs[key] = e.Timestamp
		lastStep[key] = e.Step
	}
	return nil
}
