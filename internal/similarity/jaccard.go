package similarity

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// JaccardSim measures item similarity as the Jaccard index of their
// attribute sets (item metadata properties, or nearby points of interest).
// Unknown items have empty sets and similarity 0.
type JaccardSim struct {
	sets map[int]map[int]struct{}
}

// LoadJaccard reads an attribute map from a JSON object of
// {"item_id": [attribute ids...]}.
func LoadJaccard(path string) (*JaccardSim, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read similarity map: %w", err)
	}

	var raw map[int][]int
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("parse similarity map %s: %w", path, err)
	}

	return NewJaccard(raw), nil
}

// NewJaccard builds a provider from an in-memory attribute map.
func NewJaccard(attrs map[int][]int) *JaccardSim {
	sets := make(map[int]map[int]struct{}, len(attrs))
	for item, list := range attrs {
		set := make(map[int]struct{}, len(list))
		for _, a := range list {
			set[a] = struct{}{}
		}
		sets[item] = set
	}
	return &JaccardSim{sets: sets}
}

var _ Provider = (*JaccardSim)(nil)

// Pairwise returns |A∩B| / |A∪B|, 0 when either set is empty.
func (s *JaccardSim) Pairwise(a, b int) float64 {
	setA, setB := s.sets[a], s.sets[b]
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for k := range setA {
		if _, ok := setB[k]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Aggregate returns the mean pairwise similarity of item to each member of
// items, 0 for an empty list.
func (s *JaccardSim) Aggregate(items []int, item int) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, other := range items {
		sum += s.Pairwise(other, item)
	}
	return sum / float64(len(items))
}

// SetSize returns the attribute-set cardinality, 0 for unknown items.
func (s *JaccardSim) SetSize(item int) int {
	return len(s.sets[item])
}
