package accumulator

import (
	"testing"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

func TestItemCTR_CountsClicksAndImpressions(t *testing.T) {
	acc := NewItemCTR()

	acc.Update(&domain.Event{Reference: "82020", Impressions: []string{"82020", "910923"}})
	acc.Update(&domain.Event{Reference: "910923", Impressions: []string{"82020", "910923"}})
	acc.Update(&domain.Event{Reference: "82020", Impressions: []string{"82020"}})

	out := collect(t, acc, &domain.Event{}, &domain.Candidate{ItemID: "82020"})
	if out["clickout_item_clicks"] != 2 {
		t.Errorf("clicks = %v, want 2", out["clickout_item_clicks"])
	}
	if out["clickout_item_impressions"] != 3 {
		t.Errorf("impressions = %v, want 3", out["clickout_item_impressions"])
	}

	out = collect(t, acc, &domain.Event{}, &domain.Candidate{ItemID: "unseen"})
	if out["clickout_item_clicks"] != 0 || out["clickout_item_impressions"] != 0 {
		t.Errorf("unseen item = %v/%v, want 0/0", out["clickout_item_clicks"], out["clickout_item_impressions"])
	}
}

func TestItemCTRByPlatform_LaplaceSmoothedRatio(t *testing.T) {
	acc := NewItemCTRByPlatform()

	for i := 0; i < 3; i++ {
		acc.Update(&domain.Event{Reference: "82020", Platform: "AU", Impressions: []string{"82020"}})
	}
	acc.Update(&domain.Event{Reference: "910923", Platform: "AU", Impressions: []string{"82020"}})

	out := collect(t, acc, &domain.Event{Platform: "AU"}, &domain.Candidate{ItemID: "82020"})
	if out["clickout_item_clicks_by_platform"] != 3 {
		t.Errorf("clicks = %v, want 3", out["clickout_item_clicks_by_platform"])
	}
	if out["clickout_item_impressions_by_platform"] != 4 {
		t.Errorf("impressions = %v, want 4", out["clickout_item_impressions_by_platform"])
	}
	// clicks / (impressions + 1)
	if out["clickout_item_ctr_by_platform"] != 3.0/5.0 {
		t.Errorf("ctr = %v, want 0.6", out["clickout_item_ctr_by_platform"])
	}

	// Same item on a different platform has independent counters, and the
	// smoothed ratio of an unseen pair is 0, not NaN.
	out = collect(t, acc, &domain.Event{Platform: "JP"}, &domain.Candidate{ItemID: "82020"})
	if out["clickout_item_ctr_by_platform"] != 0.0 {
		t.Errorf("unseen platform ctr = %v, want 0", out["clickout_item_ctr_by_platform"])
	}
}
