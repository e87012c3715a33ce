package accumulator

import (
	"testing"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

func TestLastSeenTimestamp_ElapsedAndCap(t *testing.T) {
	acc := NewLastSeenTimestamp("clickout_item_item_last_timestamp", domain.ActionClickoutItem)

	acc.Update(&domain.Event{UserID: "u1", Reference: "82020", Timestamp: 100})

	out := collect(t, acc, &domain.Event{UserID: "u1", Timestamp: 160}, &domain.Candidate{ItemID: "82020"})
	if out["clickout_item_item_last_timestamp"] != int64(60) {
		t.Errorf("elapsed = %v, want 60", out["clickout_item_item_last_timestamp"])
	}

	// An unseen pair reads as elapsed-since-zero, capped at the sentinel.
	out = collect(t, acc, &domain.Event{UserID: "u1", Timestamp: 5000000}, &domain.Candidate{ItemID: "unseen"})
	if out["clickout_item_item_last_timestamp"] != int64(domain.NoTimeSignal) {
		t.Errorf("unseen = %v, want %d", out["clickout_item_item_last_timestamp"], domain.NoTimeSignal)
	}
}

func TestTimestampDelta_ZeroDefaultNegativeDelta(t *testing.T) {
	acc := NewTimestampDelta("interaction_img_diff_ts", domain.ActionInteractionItemImage)

	out := collect(t, acc, &domain.Event{UserID: "u1", Timestamp: 50}, &domain.Candidate{ItemID: "82020"})
	if out["interaction_img_diff_ts"] != int64(0) {
		t.Errorf("unseen pair = %v, want 0", out["interaction_img_diff_ts"])
	}

	acc.Update(&domain.Event{UserID: "u1", Reference: "82020", Timestamp: 40})
	out = collect(t, acc, &domain.Event{UserID: "u1", Timestamp: 50}, &domain.Candidate{ItemID: "82020"})
	if out["interaction_img_diff_ts"] != int64(-10) {
		t.Errorf("delta = %v, want -10", out["interaction_img_diff_ts"])
	}
}

func TestLastClickoutTimestamp_PerImpressionList(t *testing.T) {
	acc := NewLastClickoutTimestamp("last_timestamp_clickout")

	acc.Update(&domain.Event{UserID: "u1", ImpressionsRaw: "a|b", Timestamp: 100})

	out := collect(t, acc, &domain.Event{UserID: "u1", ImpressionsRaw: "a|b", Timestamp: 130}, &domain.Candidate{})
	if out["last_timestamp_clickout"] != int64(30) {
		t.Errorf("elapsed = %v, want 30", out["last_timestamp_clickout"])
	}

	// A different list has no recorded clickout; elapsed is measured
	// against the zero timestamp.
	out = collect(t, acc, &domain.Event{UserID: "u1", ImpressionsRaw: "x|y", Timestamp: 130}, &domain.Candidate{})
	if out["last_timestamp_clickout"] != int64(130) {
		t.Errorf("other view = %v, want 130", out["last_timestamp_clickout"])
	}
}
