package accumulator

import (
	"testing"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
	"github.com/csy1204/recsys-2019-conf-ver/internal/priors"
)

func TestClickProbability_LookupByOffsetAndBucket(t *testing.T) {
	probs := priors.FromEntries(map[[2]int]float64{
		{1, 30}: 0.42,
	})
	acc := NewClickProbability(probs)

	acc.Update(&domain.Event{UserID: "u1", ImpressionsRaw: "a|b|c", IndexClicked: 2, Timestamp: 100})

	// Offset = rank 3 - last position 2 = 1, elapsed 30s buckets to 30.
	row := &domain.Event{UserID: "u1", ImpressionsRaw: "a|b|c", Timestamp: 130}
	out := collect(t, acc, row, &domain.Candidate{Rank: 3})
	if out["clickout_prob_time_position_offset"] != 0.42 {
		t.Errorf("prob = %v, want 0.42", out["clickout_prob_time_position_offset"])
	}
}

func TestClickProbability_FallbackBucketThenStaticDefault(t *testing.T) {
	probs := priors.FromEntries(map[[2]int]float64{
		{1, priors.FallbackTimeBucket}: 0.11,
	})
	acc := NewClickProbability(probs)

	acc.Update(&domain.Event{UserID: "u1", ImpressionsRaw: "a|b|c", IndexClicked: 0, Timestamp: 100})

	// Exact bucket 5 misses; the fallback bucket entry applies.
	row := &domain.Event{UserID: "u1", ImpressionsRaw: "a|b|c", Timestamp: 105}
	out := collect(t, acc, row, &domain.Candidate{Rank: 1})
	if out["clickout_prob_time_position_offset"] != 0.11 {
		t.Errorf("fallback prob = %v, want 0.11", out["clickout_prob_time_position_offset"])
	}

	// Offset 2 misses both lookups; the static rank default applies.
	out = collect(t, acc, row, &domain.Candidate{Rank: 2})
	if out["clickout_prob_time_position_offset"] != 0.1 {
		t.Errorf("static default = %v, want 0.1", out["clickout_prob_time_position_offset"])
	}
}

func TestClickProbability_DifferentImpressionListUsesStaticDefault(t *testing.T) {
	probs := priors.FromEntries(map[[2]int]float64{
		{0, 0}: 0.99,
	})
	acc := NewClickProbability(probs)

	acc.Update(&domain.Event{UserID: "u1", ImpressionsRaw: "a|b|c", IndexClicked: 0, Timestamp: 100})

	// The current clickout shows a different list, so there is no temporal
	// signal and the table must not be consulted.
	row := &domain.Event{UserID: "u1", ImpressionsRaw: "x|y|z", Timestamp: 100}
	out := collect(t, acc, row, &domain.Candidate{Rank: 0})
	if out["clickout_prob_time_position_offset"] != 0.3 {
		t.Errorf("prob = %v, want static 0.3", out["clickout_prob_time_position_offset"])
	}
}

func TestClickProbability_StaticDefaultFloor(t *testing.T) {
	acc := NewClickProbability(priors.FromEntries(nil))

	row := &domain.Event{UserID: "new-user", ImpressionsRaw: "a|b"}
	for rank, want := range map[int]float64{0: 0.3, 1: 0.2, 5: 0.03, 6: 0.03, 24: 0.03} {
		out := collect(t, acc, row, &domain.Candidate{Rank: rank})
		if out["clickout_prob_time_position_offset"] != want {
			t.Errorf("rank %d = %v, want %v", rank, out["clickout_prob_time_position_offset"], want)
		}
	}
}

func TestFakeClickProbability_TracksCarriedForwardImpressions(t *testing.T) {
	probs := priors.FromEntries(map[[2]int]float64{
		{1, 10}: 0.5,
	})
	acc := NewFakeClickProbability(probs)

	// Non-clickout actions feed the carried-forward variant.
	acc.Update(&domain.Event{
		UserID:              "u1",
		ActionType:          domain.ActionInteractionItemImage,
		FakeImpressionsRaw:  "a|b|c",
		FakeIndexInteracted: 1,
		Timestamp:           100,
	})

	row := &domain.Event{UserID: "u1", FakeImpressionsRaw: "a|b|c", Timestamp: 110}
	out := collect(t, acc, row, &domain.Candidate{Rank: 2})
	if out["fake_clickout_prob_time_position_offset"] != 0.5 {
		t.Errorf("prob = %v, want 0.5", out["fake_clickout_prob_time_position_offset"])
	}
}
