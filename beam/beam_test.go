package beam

import (
	"testing"

	"github.com/jsphweid/musicbox/model"
	"github.com/stretchr/testify/assert"
)

func n(duration string, stem model.StemDirection) model.RenderedNote {
	return model.RenderedNote{Keys: []string{"c/4"}, Duration: duration, Stem: stem, FlagVisible: true}
}

func restNote() model.RenderedNote {
	return model.RenderedNote{Keys: []string{"b/4"}, Duration: "1r", Stem: model.StemUp, FlagVisible: true, IsRest: true}
}

func flags(notes []model.RenderedNote) []bool {
	var res []bool
	for _, n := range notes {
		res = append(res, n.FlagVisible)
	}
	return res
}

func TestNoEligibleNotes(t *testing.T) {
	notes := []model.RenderedNote{n("q", model.StemUp), n("h", model.StemDown), restNote()}
	groups, out := Group(1, notes)

	assert.Empty(t, groups)
	assert.Equal(t, []bool{true, true, true}, flags(out))
}

func TestRunOfEighthsFormsOneGroup(t *testing.T) {
	for size := 2; size <= 8; size++ {
		notes := make([]model.RenderedNote, size)
		for i := range notes {
			notes[i] = n("8", model.StemUp)
		}
		groups, out := Group(1, notes)

		if assert.Len(t, groups, 1) {
			assert.Equal(t, size, groups[0].Size())
			assert.Equal(t, 0, groups[0].Start)
			assert.Equal(t, "8", groups[0].Duration)
		}
		for _, f := range flags(out) {
			assert.False(t, f)
		}
	}
}

func TestQuarterSplitsRun(t *testing.T) {
	cases := []struct {
		name  string
		notes []model.RenderedNote
		want  []model.BeamGroup
		flags []bool
	}{
		{
			name: "two on each side",
			notes: []model.RenderedNote{
				n("8", model.StemUp), n("8", model.StemUp), n("q", model.StemUp), n("8", model.StemUp), n("8", model.StemUp),
			},
			want: []model.BeamGroup{
				{Staff: 1, Start: 0, End: 1, Duration: "8", Stem: model.StemUp},
				{Staff: 1, Start: 3, End: 4, Duration: "8", Stem: model.StemUp},
			},
			flags: []bool{false, false, true, false, false},
		},
		{
			name: "singleton keeps its flag",
			notes: []model.RenderedNote{
				n("8", model.StemUp), n("q", model.StemUp), n("8", model.StemUp), n("8", model.StemUp), n("8", model.StemUp),
			},
			want: []model.BeamGroup{
				{Staff: 1, Start: 2, End: 4, Duration: "8", Stem: model.StemUp},
			},
			flags: []bool{true, true, false, false, false},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			groups, out := Group(1, tc.notes)
			assert.Equal(t, tc.want, groups)
			assert.Equal(t, tc.flags, flags(out))
		})
	}
}

func TestBreakConditions(t *testing.T) {
	cases := []struct {
		name  string
		notes []model.RenderedNote
		sizes []int
	}{
		{"duration change", []model.RenderedNote{n("8", model.StemUp), n("8", model.StemUp), n("16", model.StemUp), n("16", model.StemUp)}, []int{2, 2}},
		{"stem change", []model.RenderedNote{n("8", model.StemUp), n("8", model.StemUp), n("8", model.StemDown), n("8", model.StemDown)}, []int{2, 2}},
		{"rest", []model.RenderedNote{n("8", model.StemUp), restNote(), n("8", model.StemUp), n("8", model.StemUp)}, []int{2}},
		{"alternating stems", []model.RenderedNote{n("8", model.StemUp), n("8", model.StemDown), n("8", model.StemUp)}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			groups, _ := Group(2, tc.notes)
			var sizes []int
			for _, g := range groups {
				sizes = append(sizes, g.Size())
				assert.Equal(t, 2, g.Staff)
			}
			assert.Equal(t, tc.sizes, sizes)
		})
	}
}

func TestGroupDoesNotMutateInput(t *testing.T) {
	notes := []model.RenderedNote{n("8", model.StemUp), n("8", model.StemUp)}
	Group(1, notes)
	assert.Equal(t, []bool{true, true}, flags(notes))
}
