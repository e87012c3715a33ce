package accumulator

import (
	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// unknownPoi stands in before a user's first point-of-interest search.
const unknownPoi = "UNK"

// PoiFeatures tracks the last point-of-interest each user searched for and
// accumulates click/impression counters per (POI, item), emitting the last
// POI, the counters for the candidate and their Laplace-smoothed ratio.
type PoiFeatures struct {
	lastPoi     map[string]string
	clicks      map[string]int
	impressions map[string]int
}

func NewPoiFeatures() *PoiFeatures {
	return &PoiFeatures{
		lastPoi:     make(map[string]string),
		clicks:      make(map[string]int),
		impressions: make(map[string]int),
	}
}

func (a *PoiFeatures) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionSearchForPoi, domain.ActionClickoutItem}
}

func (a *PoiFeatures) Update(row *domain.Event) {
	switch row.ActionType {
	case domain.ActionSearchForPoi:
		a.lastPoi[row.UserID] = row.Reference
	case domain.ActionClickoutItem:
		poi := a.poiFor(row.UserID)
		a.clicks[pairKey(poi, row.Reference)]++
		for _, itemID := range row.Impressions {
			a.impressions[pairKey(poi, itemID)]++
		}
	}
}

func (a *PoiFeatures) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	poi := a.poiFor(row.UserID)
	clicks := a.clicks[pairKey(poi, item.ItemID)]
	impressions := a.impressions[pairKey(poi, item.ItemID)]

	out["last_poi"] = poi
	out["last_poi_item_clicks"] = clicks
	out["last_poi_item_impressions"] = impressions
	out["last_poi_ctr"] = float64(clicks) / float64(impressions+1)
}

func (a *PoiFeatures) poiFor(userID string) string {
	if poi, ok := a.lastPoi[userID]; ok {
		return poi
	}
	return unknownPoi
}
