package domain

import "strconv"

// Sentinel values used in place of missing signals. Lookups against
// accumulator state never fail; they resolve to one of these instead.
const (
	// IndexMissing marks a reference that is absent from an impression list.
	IndexMissing = -1000

	// NoPriceSignal is returned when no prior price interaction exists.
	NoPriceSignal = 1000

	// NoTimeSignal caps elapsed-time features when no meaningful prior
	// timestamp exists.
	NoTimeSignal = 1000000
)

// Event is one row of the interaction log.
// Corresponds to one line of the events table produced by the loader.
//
// The loader resolves Timestamp to integer epoch seconds but does NOT split
// the pipe-delimited impression/price strings; the feature assembler does
// that and fills the derived fields below.
type Event struct {
	UserID     string
	SessionID  string
	Timestamp  int64
	ActionType ActionType

	// Reference is an item id, filter value or sort spec depending on
	// ActionType.
	Reference string

	// ImpressionsRaw and PricesRaw are pipe-delimited and aligned
	// index-for-index. Present only on clickout events.
	ImpressionsRaw string
	PricesRaw      string

	// FakeImpressionsRaw is the impression list carried forward from the
	// most recent list-displaying action, present on every event.
	FakeImpressionsRaw string

	CurrentFilters string
	Step           int
	StepFromEnd    int
	MaxStep        int
	Platform       string

	// IsTest marks a held-out event: eligible for feature queries but
	// never allowed to mutate accumulator state.
	IsTest bool

	// Derived by the assembler for clickout events; transient, stripped
	// from emitted feature records.
	Impressions     []string
	Prices          []int
	ImpressionsHash string
	IndexClicked    int
	PriceClicked    int

	// Derived by the assembler for every event.
	FakeImpressions     []string
	FakeIndexInteracted int
}

// ReferenceInt parses the event reference as an integer item id.
// Non-numeric references yield IndexMissing rather than an error.
func (e *Event) ReferenceInt() int {
	return SafeInt(e.Reference)
}

// SafeInt parses s as an integer, yielding IndexMissing on failure.
func SafeInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return IndexMissing
	}
	return n
}
