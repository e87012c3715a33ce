package accumulator

import (
	"fmt"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// ItemCTR maintains running click and impression counts per item.
type ItemCTR struct {
	clicks      map[string]int
	impressions map[string]int
}

func NewItemCTR() *ItemCTR {
	return &ItemCTR{
		clicks:      make(map[string]int),
		impressions: make(map[string]int),
	}
}

func (a *ItemCTR) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *ItemCTR) Update(row *domain.Event) {
	a.clicks[row.Reference]++
	for _, itemID := range row.Impressions {
		a.impressions[itemID]++
	}
}

func (a *ItemCTR) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	out["clickout_item_clicks"] = a.clicks[item.ItemID]
	out["clickout_item_impressions"] = a.impressions[item.ItemID]
}

// ItemCTRByKey composes the item counters with a categorical event field
// (e.g. platform) and additionally emits the Laplace-smoothed ratio
// clicks/(impressions+1).
type ItemCTRByKey struct {
	// KeyName labels the composed dimension in feature names.
	KeyName string
	// Key extracts the composed dimension from the event.
	Key func(row *domain.Event) string

	clicks      map[string]int
	impressions map[string]int
}

// NewItemCTRByPlatform composes item counters with the event platform.
func NewItemCTRByPlatform() *ItemCTRByKey {
	return &ItemCTRByKey{
		KeyName:     "platform",
		Key:         func(row *domain.Event) string { return row.Platform },
		clicks:      make(map[string]int),
		impressions: make(map[string]int),
	}
}

func (a *ItemCTRByKey) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *ItemCTRByKey) Update(row *domain.Event) {
	a.clicks[pairKey(row.Reference, a.Key(row))]++
	for _, itemID := range row.Impressions {
		a.impressions[pairKey(itemID, a.Key(row))]++
	}
}

func (a *ItemCTRByKey) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	clicks := a.clicks[pairKey(item.ItemID, a.Key(row))]
	impressions := a.impressions[pairKey(item.ItemID, a.Key(row))]
	out[fmt.Sprintf("clickout_item_clicks_by_%s", a.KeyName)] = clicks
	out[fmt.Sprintf("clickout_item_impressions_by_%s", a.KeyName)] = impressions
	out[fmt.Sprintf("clickout_item_ctr_by_%s", a.KeyName)] = float64(clicks) / float64(impressions+1)
}
