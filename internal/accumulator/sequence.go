package accumulator

import (
	"github.com/goccy/go-json"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// ClickSequenceEncoder tracks, per (user, session), runs of clicked ranks
// over repeated impression lists: while consecutive clickouts in a session
// show the same impression list, the clicked ranks extend the current run;
// a changed list starts a new run. The feature is the full accumulated
// run list, JSON-encoded as a sequence of sequences.
type ClickSequenceEncoder struct {
	Name string

	currentImpression map[userViewKey]string
	sequences         map[userViewKey][][]int
}

func NewClickSequenceEncoder() *ClickSequenceEncoder {
	return &ClickSequenceEncoder{
		Name:              "click_index_sequence",
		currentImpression: make(map[userViewKey]string),
		sequences:         make(map[userViewKey][][]int),
	}
}

func (a *ClickSequenceEncoder) ActionTypes() []domain.ActionType {
	return []domain.ActionType{domain.ActionClickoutItem}
}

func (a *ClickSequenceEncoder) Update(row *domain.Event) {
	key := UserSessionKey(row)
	seqs := a.sequences[key]
	if a.currentImpression[key] == row.ImpressionsRaw && len(seqs) > 0 {
		seqs[len(seqs)-1] = append(seqs[len(seqs)-1], row.IndexClicked)
	} else {
		seqs = append(seqs, []int{row.IndexClicked})
	}
	a.sequences[key] = seqs
	a.currentImpression[key] = row.ImpressionsRaw
}

func (a *ClickSequenceEncoder) Collect(row *domain.Event, item *domain.Candidate, out map[string]any) {
	seqs := a.sequences[UserSessionKey(row)]
	if seqs == nil {
		seqs = [][]int{}
	}
	buf, err := json.Marshal(seqs)
	if err != nil {
		out[a.Name] = "[]"
		return
	}
	out[a.Name] = string(buf)
}
