// Package beam groups runs of short notes within one staff of one measure.
package beam

import "github.com/jsphweid/musicbox/model"

var eligible = map[string]bool{"8": true, "16": true, "32": true, "64": true}

func Eligible(n model.RenderedNote) bool {
	return !n.IsRest && eligible[n.Duration]
}

// Group scans notes left to right and returns the beam groups together with
// a copy of notes in which every beamed note has its flag hidden. A run is
// broken by a rest, an ineligible note, a duration change or a stem change;
// runs shorter than two notes are discarded.
func Group(staff int, notes []model.RenderedNote) ([]model.BeamGroup, []model.RenderedNote) {
	out := make([]model.RenderedNote, len(notes))
	copy(out, notes)

	var groups []model.BeamGroup
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= 1 {
			groups = append(groups, model.BeamGroup{
				Staff:    staff,
				Start:    start,
				End:      end,
				Duration: out[start].Duration,
				Stem:     out[start].Stem,
			})
			for i := start; i <= end; i++ {
				out[i].FlagVisible = false
			}
		}
		start = -1
	}

	for i, n := range out {
		if !Eligible(n) {
			flush(i - 1)
			continue
		}
		if start >= 0 && (n.Duration != out[start].Duration || n.Stem != out[start].Stem) {
			flush(i - 1)
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(out) - 1)

	return groups, out
}
