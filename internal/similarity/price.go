package similarity

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// noPriceSignal is emitted when no price is known for either side of a
// comparison.
const noPriceSignal = 1000

// PriceSim measures item similarity as absolute price distance: closer
// prices mean more similar items. Unknown prices resolve to a fixed
// sentinel instead of failing.
type PriceSim struct {
	prices map[int]float64
}

// LoadPrices reads a price map from a JSON object of {"item_id": price}.
func LoadPrices(path string) (*PriceSim, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price map: %w", err)
	}

	var raw map[int]float64
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("parse price map %s: %w", path, err)
	}

	return NewPriceSim(raw), nil
}

// NewPriceSim builds a provider from an in-memory price map.
func NewPriceSim(prices map[int]float64) *PriceSim {
	return &PriceSim{prices: prices}
}

var _ Provider = (*PriceSim)(nil)

// Pairwise returns |price(a) - price(b)|, the no-signal sentinel when
// either price is unknown.
func (s *PriceSim) Pairwise(a, b int) float64 {
	pa, okA := s.prices[a]
	pb, okB := s.prices[b]
	if !okA || !okB {
		return noPriceSignal
	}
	d := pa - pb
	if d < 0 {
		d = -d
	}
	return d
}

// Aggregate returns the mean absolute price distance of item to each member
// of items, skipping unknown members; the sentinel when nothing is
// comparable.
func (s *PriceSim) Aggregate(items []int, item int) float64 {
	p, ok := s.prices[item]
	if !ok || len(items) == 0 {
		return noPriceSignal
	}
	sum := 0.0
	n := 0
	for _, other := range items {
		po, ok := s.prices[other]
		if !ok {
			continue
		}
		d := po - p
		if d < 0 {
			d = -d
		}
		sum += d
		n++
	}
	if n == 0 {
		return noPriceSignal
	}
	return sum / float64(n)
}

// SetSize reports 1 for items with a known price, 0 otherwise.
func (s *PriceSim) SetSize(item int) int {
	if _, ok := s.prices[item]; ok {
		return 1
	}
	return 0
}
