// Package ingestion supplies ordered event streams to the feature engine.
// The loaders resolve timestamps to integer epochs but leave the
// pipe-delimited impression and price strings intact; splitting them is the
// assembler's job.
package ingestion

import (
	"io"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// Source is a lazily-produced, strictly time-ordered sequence of events.
// Next returns io.EOF when the stream is exhausted.
type Source interface {
	Next() (*domain.Event, error)
}

// SliceSource serves events from an in-memory slice.
type SliceSource struct {
	events []*domain.Event
	pos    int
}

// NewSliceSource wraps events in a Source. The slice is not copied; events
// are handed out as fresh copies so the assembler's derived fields never
// leak back into the input.
func NewSliceSource(events []*domain.Event) *SliceSource {
	return &SliceSource{events: events}
}

func (s *SliceSource) Next() (*domain.Event, error) {
	if s.pos >= len(s.events) {
		return nil, io.EOF
	}
	row := *s.events[s.pos]
	s.pos++
	return &row, nil
}
