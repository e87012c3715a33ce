package domain

// Candidate is one (item, rank, price) triple from a clickout event's
// impression list.
type Candidate struct {
	ItemID string
	Rank   int // 0-based position within the impression list
	Price  int
}
