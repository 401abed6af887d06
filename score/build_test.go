package score

import (
	"errors"
	"strings"
	"testing"

	"github.com/jsphweid/musicbox/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoMeasureXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.1 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">
<score-partwise version="3.1">
  <part id="P1">
    <measure number="1">
      <note>
        <pitch><step>C</step><octave>4</octave></pitch>
        <duration>1</duration>
        <type>quarter</type>
        <staff>1</staff>
      </note>
      <note>
        <rest/>
        <duration>1</duration>
        <type>quarter</type>
        <staff>2</staff>
      </note>
    </measure>
    <measure number="2">
      <note>
        <pitch><step>D</step><octave>4</octave></pitch>
        <duration>1</duration>
        <type>eighth</type>
        <stem>UP</stem>
        <staff>1</staff>
      </note>
      <note>
        <chord/>
        <pitch><step>F</step><alter>1</alter><octave>4</octave></pitch>
        <duration>1</duration>
        <type>eighth</type>
        <staff>1</staff>
      </note>
    </measure>
  </part>
</score-partwise>`

func compactNote(step, octave, class, staff string) map[string]any {
	return map[string]any{
		"pitch": map[string]any{
			"step":   map[string]any{"_text": step},
			"octave": map[string]any{"_text": octave},
		},
		"type":  map[string]any{"_text": class},
		"staff": map[string]any{"_text": staff},
	}
}

func TestBuildFromMusicXML(t *testing.T) {
	tree, err := ParseXML(strings.NewReader(twoMeasureXML))
	require.NoError(t, err)

	doc, diags, err := Build(tree)
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert := assert.New(t)
	assert.Equal("P1", doc.PartID)
	assert.Len(doc.Measures, 2)

	m1 := doc.Measures[0]
	assert.Equal("1", m1.Number)
	assert.Len(m1.Events, 2)
	assert.Equal(model.NoteEvent{Kind: model.Pitched, Step: "C", Octave: 4, DurationClass: "quarter", Ticks: 1, Staff: 1}, m1.Events[0])
	assert.Equal(model.Rest, m1.Events[1].Kind)
	assert.Equal(2, m1.Events[1].Staff)

	m2 := doc.Measures[1]
	assert.Equal(model.StemUp, m2.Events[0].Stem)
	assert.Equal(model.ChordMember, m2.Events[1].Kind)
	assert.Equal(1, m2.Events[1].Alter)
}

func TestBuildAcceptsSingleNoteAsObject(t *testing.T) {
	tree := map[string]any{
		"score-partwise": map[string]any{
			"part": map[string]any{
				"measure": map[string]any{
					"note": compactNote("G", "4", "half", "1"),
				},
			},
		},
	}

	doc, _, err := Build(tree)
	require.NoError(t, err)
	assert.Len(t, doc.Measures, 1)
	assert.Len(t, doc.Measures[0].Events, 1)
	assert.Equal(t, "G", doc.Measures[0].Events[0].Step)
}

func TestBuildDefaultsUnknownStaffToTreble(t *testing.T) {
	missing := compactNote("A", "3", "quarter", "")
	delete(missing, "staff")
	tree := map[string]any{
		"part": map[string]any{
			"measure": []any{
				map[string]any{"note": []any{compactNote("C", "5", "quarter", "7"), missing}},
			},
		},
	}

	doc, _, err := Build(tree)
	require.NoError(t, err)
	for _, e := range doc.Measures[0].Events {
		assert.Equal(t, model.TrebleStaff, e.Staff)
	}
}

func TestBuildAcceptsJSONNumbers(t *testing.T) {
	tree, err := Decode([]byte(`{"part": {"measure": [{"note": {"pitch": {"step": "E", "octave": 5}, "duration": 2, "staff": 2}}]}}`))
	require.NoError(t, err)

	doc, _, err := Build(tree)
	require.NoError(t, err)
	evt := doc.Measures[0].Events[0]
	assert.Equal(t, 5, evt.Octave)
	assert.Equal(t, 2, evt.Ticks)
	assert.Equal(t, model.BassStaff, evt.Staff)
}

func TestBuildReportsExtraParts(t *testing.T) {
	part := func(id string) map[string]any {
		return map[string]any{
			"-id":     id,
			"measure": map[string]any{"note": compactNote("C", "4", "quarter", "1")},
		}
	}
	tree := map[string]any{"score-partwise": map[string]any{"part": []any{part("P1"), part("P2")}}}

	doc, diags, err := Build(tree)
	require.NoError(t, err)
	assert.Equal(t, "P1", doc.PartID)
	require.Len(t, diags, 1)
	assert.Equal(t, model.ExtraPartIgnored, diags[0].Code)
}

func TestBuildMalformed(t *testing.T) {
	cases := []struct {
		name string
		tree map[string]any
	}{
		{"nil document", nil},
		{"no measure field", map[string]any{"score-partwise": map[string]any{"part": map[string]any{"-id": "P1"}}}},
		{"no part", map[string]any{"score-partwise": map[string]any{}}},
		{"empty measure", map[string]any{"part": map[string]any{"measure": map[string]any{"-number": "1"}}}},
		{"pitch without step", map[string]any{"part": map[string]any{"measure": map[string]any{
			"note": map[string]any{"pitch": map[string]any{"octave": "4"}},
		}}}},
		{"pitch without octave", map[string]any{"part": map[string]any{"measure": map[string]any{
			"note": map[string]any{"pitch": map[string]any{"step": "C"}},
		}}}},
		{"bad step", map[string]any{"part": map[string]any{"measure": map[string]any{
			"note": map[string]any{"pitch": map[string]any{"step": "H", "octave": "4"}},
		}}}},
		{"only unpitched notes", map[string]any{"part": map[string]any{"measure": map[string]any{
			"note": map[string]any{"unpitched": map[string]any{}},
		}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, _, err := Build(tc.tree)
			assert.Nil(t, doc)
			var malformedErr *MalformedScoreError
			assert.True(t, errors.As(err, &malformedErr), "got %v", err)
		})
	}
}

func TestDecodeRejectsEmptyInput(t *testing.T) {
	_, err := Decode([]byte("  \n"))
	var malformedErr *MalformedScoreError
	assert.True(t, errors.As(err, &malformedErr))
}

func TestMalformedScoreErrorMessage(t *testing.T) {
	err := &MalformedScoreError{Measure: 1, Note: 0, Reason: "pitch missing step"}
	assert.Equal(t, "malformed score: measure 2 note 1: pitch missing step", err.Error())
}
