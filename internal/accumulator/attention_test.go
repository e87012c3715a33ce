package accumulator

import (
	"testing"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

func TestItemAttentionSpan_CreditsPreviousItem(t *testing.T) {
	acc := NewItemAttentionSpan()

	acc.Update(&domain.Event{UserID: "u1", SessionID: "s1", Reference: "a", Timestamp: 100})
	acc.Update(&domain.Event{UserID: "u1", SessionID: "s1", Reference: "b", Timestamp: 130})
	acc.Update(&domain.Event{UserID: "u1", SessionID: "s1", Reference: "a", Timestamp: 150})

	// Item a held attention 100..130; Laplace-smoothed: 30 / (1+1).
	out := collect(t, acc, &domain.Event{UserID: "u1"}, &domain.Candidate{ItemID: "a"})
	if out["average_item_attention"] != 15.0 {
		t.Errorf("a attention = %v, want 15", out["average_item_attention"])
	}
	// Item b held attention 130..150: 20 / (1+1).
	out = collect(t, acc, &domain.Event{UserID: "u1"}, &domain.Candidate{ItemID: "b"})
	if out["average_item_attention"] != 10.0 {
		t.Errorf("b attention = %v, want 10", out["average_item_attention"])
	}
	// Unseen item reads 0 without dividing by zero.
	out = collect(t, acc, &domain.Event{UserID: "u1"}, &domain.Candidate{ItemID: "z"})
	if out["average_item_attention"] != 0.0 {
		t.Errorf("unseen attention = %v, want 0", out["average_item_attention"])
	}
}

func TestItemAttentionSpan_RepeatInteractionNotCredited(t *testing.T) {
	acc := NewItemAttentionSpan()

	acc.Update(&domain.Event{UserID: "u1", SessionID: "s1", Reference: "a", Timestamp: 100})
	acc.Update(&domain.Event{UserID: "u1", SessionID: "s1", Reference: "a", Timestamp: 200})

	out := collect(t, acc, &domain.Event{UserID: "u1"}, &domain.Candidate{ItemID: "a"})
	if out["average_item_attention"] != 0.0 {
		t.Errorf("repeat attention = %v, want 0 (no item switch)", out["average_item_attention"])
	}
}

func TestMouseSpeed_TimePerPositionFromSessionStart(t *testing.T) {
	acc := NewMouseSpeed()

	// The anchor is the first in-list interaction of the session; later
	// interactions measure against it.
	acc.Update(&domain.Event{UserID: "u1", SessionID: "s1", FakeIndexInteracted: 2, Timestamp: 100})
	acc.Update(&domain.Event{UserID: "u1", SessionID: "s1", FakeIndexInteracted: 6, Timestamp: 120})
	acc.Update(&domain.Event{UserID: "u1", SessionID: "s1", FakeIndexInteracted: 0, Timestamp: 140})

	// Speeds: (120-100)/|6-2| = 5 and (140-100)/|0-2| = 20; mean 12.5.
	out := collect(t, acc, &domain.Event{UserID: "u1"}, &domain.Candidate{})
	if out["mouse_speed"] != 12.5 {
		t.Errorf("mouse_speed = %v, want 12.5", out["mouse_speed"])
	}
}

func TestMouseSpeed_MissingIndexNeverAnchors(t *testing.T) {
	acc := NewMouseSpeed()

	acc.Update(&domain.Event{UserID: "u1", SessionID: "s1", FakeIndexInteracted: domain.IndexMissing, Timestamp: 100})
	out := collect(t, acc, &domain.Event{UserID: "u1"}, &domain.Candidate{})
	if out["mouse_speed"] != 0.0 {
		t.Errorf("mouse_speed = %v, want 0", out["mouse_speed"])
	}
}
