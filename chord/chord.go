package chord

import (
	"fmt"

	"github.com/jsphweid/musicbox/model"
)

// Stacked is one horizontal position on a staff: an anchor event plus the
// chord members that sound with it.
type Stacked struct {
	Anchor  model.NoteEvent
	Members []model.NoteEvent
}

func (s Stacked) Size() int {
	return 1 + len(s.Members)
}

// Stack folds the chord members of one staff's events onto the preceding
// pitched note. Members with no pitched anchor are dropped and reported.
func Stack(measure, staff int, events []model.NoteEvent) ([]Stacked, []model.Diagnostic) {
	var res []Stacked
	var diags []model.Diagnostic
	for i, e := range events {
		if !e.IsChordMember() {
			res = append(res, Stacked{Anchor: e})
			continue
		}
		if len(res) == 0 || res[len(res)-1].Anchor.IsRest() {
			diags = append(diags, model.Diagnostic{
				Code:    model.IncompleteChordAnchor,
				Measure: measure,
				Staff:   staff,
				Message: fmt.Sprintf("chord member %s%d at position %d has no anchor note, dropped", e.Step, e.Octave, i+1),
			})
			continue
		}
		last := &res[len(res)-1]
		last.Members = append(last.Members, e)
	}
	return res, diags
}
