package ingestion

import (
	"errors"
	"io"
	"testing"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

func TestValidateOrdering_AcceptsOrderedStream(t *testing.T) {
	events := []*domain.Event{
		{UserID: "u1", SessionID: "s1", Timestamp: 10, Step: 1},
		{UserID: "u2", SessionID: "s2", Timestamp: 10, Step: 1},
		{UserID: "u1", SessionID: "s1", Timestamp: 10, Step: 2},
		{UserID: "u1", SessionID: "s1", Timestamp: 15, Step: 3},
	}
	if err := ValidateOrdering(events); err != nil {
		t.Errorf("ValidateOrdering = %v, want nil", err)
	}
}

func TestValidateOrdering_RejectsDecreasingTimestamp(t *testing.T) {
	events := []*domain.Event{
		{UserID: "u1", SessionID: "s1", Timestamp: 20, Step: 1},
		{UserID: "u2", SessionID: "s2", Timestamp: 10, Step: 1},
	}
	if err := ValidateOrdering(events); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("ValidateOrdering = %v, want ErrInvalidOrdering", err)
	}
}

func TestValidateOrdering_RejectsDecreasingStepWithinSession(t *testing.T) {
	events := []*domain.Event{
		{UserID: "u1", SessionID: "s1", Timestamp: 10, Step: 3},
		{UserID: "u1", SessionID: "s1", Timestamp: 10, Step: 2},
	}
	if err := ValidateOrdering(events); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("ValidateOrdering = %v, want ErrInvalidOrdering", err)
	}
}

func TestValidateOrdering_EmptyStream(t *testing.T) {
	if err := ValidateOrdering(nil); err != nil {
		t.Errorf("ValidateOrdering(nil) = %v, want nil", err)
	}
}

func TestSliceSource_HandsOutCopies(t *testing.T) {
	orig := &domain.Event{UserID: "u1", Timestamp: 10}
	src := NewSliceSource([]*domain.Event{orig})

	row, err := src.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	row.UserID = "mutated"
	if orig.UserID != "u1" {
		t.Error("mutation of served event leaked into the input slice")
	}

	if _, err := src.Next(); err != io.EOF {
		t.Errorf("Next past end = %v, want io.EOF", err)
	}
}
