package domain

// FeatureRecord is one training/evaluation row: the features of a single
// candidate item at a single clickout event.
//
// Features maps feature name to the value contributed by an accumulator.
// Values are scalars (int, int64, float64, bool), strings (encoded
// sequences, categorical values) or nil when an accumulator deliberately
// suppresses a signal.
type FeatureRecord struct {
	ClickoutID string

	// Clickout context.
	UserID         string
	SessionID      string
	Timestamp      int64
	Platform       string
	CurrentFilters string
	Step           int
	StepFromEnd    int
	MaxStep        int
	IsTest         bool

	// Candidate.
	ItemID string
	Rank   int
	Price  int

	// ItemIDClicked is the reference of the clickout event.
	ItemIDClicked string

	// WasClicked is 1 iff ItemID equals the clicked reference.
	WasClicked int

	Features map[string]any
}
