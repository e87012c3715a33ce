package accumulator

import (
	"sort"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// PriceSimilarity tracks every clicked price per user and emits the mean
// absolute distance between the candidate price and the distinct clicked
// prices, plus the difference from the most recently clicked price.
// NoPriceSignal stands in before the first clickout.
type PriceSimilarity struct {
	prices map[string][]int
}

func NewPriceSimilarity() *PriceSimilarity {
	return &PriceSimilarity{prices: make(map[string][]int)}
}

func (a *PriceSimilarity) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *PriceSimilarity) Update(row *domain.Event) {
	a.prices[row.UserID] = append(a.prices[row.UserID], row.PriceClicked)
}

func (a *PriceSimilarity) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	clicked := a.prices[row.UserID]
	if len(clicked) == 0 {
		out["avg_price_similarity"] = float64(domain.NoPriceSignal)
		out["last_price_diff"] = domain.NoPriceSignal
		return
	}

	distinct := distinctInts(clicked)
	sum := 0
	for _, p := range distinct {
		d := p - item.Price
		if d < 0 {
			d = -d
		}
		sum += d
	}
	out["avg_price_similarity"] = float64(sum) / float64(len(distinct))
	out["last_price_diff"] = clicked[len(clicked)-1] - item.Price
}

func distinctInts(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// PriceFeatures is stateless: it positions the candidate price against the
// current impression list's price spread.
type PriceFeatures struct{}

func NewPriceFeatures() *PriceFeatures { return &PriceFeatures{} }

func (a *PriceFeatures) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *PriceFeatures) Update(row *domain.Event) {}

func (a *PriceFeatures) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	if len(row.Prices) == 0 {
		out["price_vs_max_price"] = 0
		out["price_vs_mean_price"] = 0.0
		return
	}
	maxPrice := row.Prices[0]
	sum := 0
	for _, p := range row.Prices {
		if p > maxPrice {
			maxPrice = p
		}
		sum += p
	}
	mean := float64(sum) / float64(len(row.Prices))
	out["price_vs_max_price"] = maxPrice - item.Price
	if mean != 0 {
		out["price_vs_mean_price"] = float64(item.Price) / mean
	} else {
		out["price_vs_mean_price"] = 0.0
	}
}
