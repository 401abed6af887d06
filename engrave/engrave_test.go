package engrave

import (
	"testing"

	"github.com/jsphweid/musicbox/model"
	"github.com/jsphweid/musicbox/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	lines    [][5]float64
	ellipses int
	filled   int
	headXs   []float64
	rects    int
	restYs   []float64
	texts    []string
}

func (r *recorder) Line(x1, y1, x2, y2, width float64) {
	r.lines = append(r.lines, [5]float64{x1, y1, x2, y2, width})
}

func (r *recorder) Ellipse(cx, cy, rx, ry float64, filled bool) {
	r.ellipses++
	r.headXs = append(r.headXs, cx)
	if filled {
		r.filled++
	}
}

func (r *recorder) Rect(x, y, w, h float64) {
	r.rects++
	r.restYs = append(r.restYs, y+h/2)
}

func (r *recorder) Text(x, y, size float64, s string) { r.texts = append(r.texts, s) }

func note(step string, octave int, class string, staff int) model.NoteEvent {
	return model.NoteEvent{Kind: model.Pitched, Step: step, Octave: octave, DurationClass: class, Ticks: 1, Staff: staff}
}

func TestParseKey(t *testing.T) {
	for _, tc := range []struct {
		key  string
		want int
	}{
		{"c/4", 28},
		{"f/5", 38},
		{"a/3", 26},
		{"b/4", 34},
	} {
		t.Run(tc.key, func(t *testing.T) {
			got, err := ParseKey(tc.key)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"", "c", "h/4", "c/x"} {
		_, err := ParseKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestDrawTwoMeasures(t *testing.T) {
	doc := &model.ScoreDocument{Measures: []model.Measure{
		{Index: 0, Events: []model.NoteEvent{
			note("C", 4, "quarter", 1),
			{Kind: model.Rest, DurationClass: "quarter", Ticks: 1, Staff: 2},
		}},
		{Index: 1, Events: []model.NoteEvent{
			note("D", 4, "eighth", 1),
			note("E", 4, "eighth", 1),
		}},
	}}
	r, err := render.Emit(doc, render.DefaultOptions())
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, Draw(r, rec))

	assert := assert.New(t)
	// separators, stave lines, one ledger line for middle C, stems and a beam
	assert.Len(rec.lines, 2+20+1+3+1)
	assert.Equal(3, rec.ellipses)
	assert.Equal(3, rec.filled)
	assert.Equal(1, rec.rects)
	assert.Equal([]string{"G", "4", "4", "F", "4", "4"}, rec.texts)

	beamLine := rec.lines[len(rec.lines)-1]
	assert.Equal(BeamWidth, beamLine[4])
}

func TestMiddleCSitsOnLedgerLine(t *testing.T) {
	doc := &model.ScoreDocument{Measures: []model.Measure{{Events: []model.NoteEvent{note("C", 4, "whole", 1)}}}}
	r, err := render.Emit(doc, render.DefaultOptions())
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, Draw(r, rec))

	// treble stave at y 50: top line 90, bottom line 130, middle C at 140
	ledger := rec.lines[len(rec.lines)-1]
	assert.Equal(t, 140.0, ledger[1])
	assert.Equal(t, 0, rec.filled)
}

func TestUnbeamedEighthGetsFlag(t *testing.T) {
	doc := &model.ScoreDocument{Measures: []model.Measure{{Events: []model.NoteEvent{
		note("G", 4, "eighth", 1),
		note("G", 4, "quarter", 1),
	}}}}
	r, err := render.Emit(doc, render.DefaultOptions())
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, Draw(r, rec))

	var flags int
	for _, l := range rec.lines {
		if l[4] == 1.5 {
			flags++
		}
	}
	assert.Equal(t, 1, flags)
}

func TestChordAnnotationDrawn(t *testing.T) {
	member := note("E", 4, "quarter", 1)
	member.Kind = model.ChordMember
	doc := &model.ScoreDocument{Measures: []model.Measure{{Events: []model.NoteEvent{
		note("C", 4, "quarter", 1), member,
	}}}}
	r, err := render.Emit(doc, render.DefaultOptions())
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, Draw(r, rec))
	assert.Contains(t, rec.texts, render.ChordAnnotation)
	assert.Equal(t, 2, rec.ellipses)
}

func TestDrawRejectsDanglingCommands(t *testing.T) {
	r := &model.Render{Commands: []model.DrawCommand{{Kind: model.CmdNote}}}
	assert.Error(t, Draw(r, &recorder{}))

	r = &model.Render{Commands: []model.DrawCommand{{Kind: model.CmdChordAnnotation}}}
	assert.Error(t, Draw(r, &recorder{}))

	r = &model.Render{Commands: []model.DrawCommand{{Kind: model.CmdBeam, Beam: &model.BeamGroup{Start: 0, End: 1}}}}
	assert.Error(t, Draw(r, &recorder{}))
}

func TestRestsSitOnMiddleLine(t *testing.T) {
	doc := &model.ScoreDocument{Measures: []model.Measure{{Events: []model.NoteEvent{
		{Kind: model.Rest, DurationClass: "whole", Staff: 1},
		{Kind: model.Rest, DurationClass: "whole", Staff: 2},
	}}}}
	r, err := render.Emit(doc, render.DefaultOptions())
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, Draw(r, rec))

	// treble lines 90..130, bass lines 190..230
	assert.Equal(t, []float64{110, 210}, rec.restYs)
}

func TestNotesFitVoiceWidth(t *testing.T) {
	doc := &model.ScoreDocument{Measures: []model.Measure{{Events: []model.NoteEvent{
		note("G", 4, "quarter", 1),
		note("G", 4, "quarter", 1),
		note("G", 4, "quarter", 1),
		note("G", 4, "quarter", 1),
	}}}}
	r, err := render.Emit(doc, render.DefaultOptions())
	require.NoError(t, err)

	var voice model.DrawCommand
	for _, c := range r.Commands {
		if c.Kind == model.CmdVoice && c.Staff == model.TrebleStaff {
			voice = c
		}
	}
	require.Equal(t, 4, voice.Count)

	rec := &recorder{}
	require.NoError(t, Draw(r, rec))
	require.Len(t, rec.headXs, 4)

	offset := ClefWidth + TimeSigWidth
	step := (voice.Width - offset) / 4
	assert := assert.New(t)
	assert.InDelta(voice.X+offset+step/2, rec.headXs[0], 1e-9)
	assert.InDelta(voice.X+voice.Width-step/2, rec.headXs[3], 1e-9)
}
