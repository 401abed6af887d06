package midi

import (
	"bytes"
	"testing"

	"github.com/jsphweid/musicbox/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestNoteName(t *testing.T) {
	for _, tc := range []struct {
		n    uint8
		want string
	}{
		{60, "C4"},
		{61, "C#4"},
		{69, "A4"},
		{21, "A0"},
		{0, "C-1"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, NoteName(tc.n))
		})
	}
}

func TestNumber(t *testing.T) {
	n, err := Number(model.NoteEvent{Step: "C", Octave: 4})
	assert.NoError(t, err)
	assert.Equal(t, uint8(60), n)

	n, err = Number(model.NoteEvent{Step: "F", Octave: 4, Alter: 1})
	assert.NoError(t, err)
	assert.Equal(t, uint8(66), n)

	_, err = Number(model.NoteEvent{Step: "C", Octave: 10})
	assert.Error(t, err)
}

func scoreWithChord() *model.ScoreDocument {
	return &model.ScoreDocument{PartID: "P1", Measures: []model.Measure{{Events: []model.NoteEvent{
		{Kind: model.Pitched, Step: "C", Octave: 4, DurationClass: "quarter", Staff: 1},
		{Kind: model.ChordMember, Step: "E", Octave: 4, DurationClass: "quarter", Staff: 1},
		{Kind: model.Rest, DurationClass: "quarter", Staff: 1},
		{Kind: model.Pitched, Step: "F", Octave: 4, Alter: 1, DurationClass: "half", Staff: 1},
		{Kind: model.Pitched, Step: "C", Octave: 3, DurationClass: "whole", Staff: 2},
	}}}}
}

func TestFromScoreThenReadNotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteScore(&buf, scoreWithChord(), 120, CommonTime))

	q, err := ReadNotes(buf.Bytes())
	require.NoError(t, err)

	assert := assert.New(t)
	if !assert.Len(q.Notes, 4) {
		return
	}
	assert.InDelta(2.0, q.Duration, 1e-6)

	// C3 and C4 share time 0 and sort by pitch
	assert.Equal("C3", q.Notes[0].Name)
	assert.InDelta(2.0, q.Notes[0].Duration, 1e-6)
	assert.Equal("C4", q.Notes[1].Name)
	assert.Equal("E4", q.Notes[2].Name)
	assert.InDelta(0.5, q.Notes[2].Duration, 1e-6)

	sharp := q.Notes[3]
	assert.Equal("F#4", sharp.Name)
	assert.Equal(1, sharp.Width)
	assert.InDelta(1.0, sharp.Time, 1e-6)
	assert.InDelta(float64(DefaultVelocity)/127, sharp.Velocity, 1e-9)
	assert.Equal(2, q.Notes[0].Width)
}

func TestActiveAtAndFrom(t *testing.T) {
	q := &model.NoteQueue{Duration: 2, Notes: []model.ScheduledNote{
		{Midi: 60, Time: 0, Duration: 1},
		{Midi: 64, Time: 0.5, Duration: 0.5},
		{Midi: 67, Time: 1, Duration: 1},
	}}

	assert := assert.New(t)
	assert.Equal([]uint8{60}, ActiveAt(q, 0.25))
	assert.Equal([]uint8{60, 64}, ActiveAt(q, 0.5))
	assert.Equal([]uint8{67}, ActiveAt(q, 1))
	assert.Empty(ActiveAt(q, 2))

	rest := From(q, 1)
	assert.Len(rest.Notes, 1)
	assert.Equal(uint8(67), rest.Notes[0].Midi)
	assert.Equal(2.0, rest.Duration)
}

func TestReadNotesRejectsGarbage(t *testing.T) {
	_, err := ReadNotes([]byte("not a midi file"))
	assert.Error(t, err)
}

func TestFromScoreNil(t *testing.T) {
	_, err := FromScore(nil, 120, CommonTime)
	assert.Error(t, err)
}

func meterOf(t *testing.T, data []byte) (uint8, uint8) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	require.NotEmpty(t, s.Tracks)
	for _, ev := range s.Tracks[0] {
		var num, denom uint8
		if ev.Message.GetMetaTimeSig(&num, &denom, nil, nil) {
			return num, denom
		}
	}
	t.Fatal("tempo track has no time signature")
	return 0, 0
}

func TestFromScoreWritesMeter(t *testing.T) {
	doc := &model.ScoreDocument{Measures: []model.Measure{{Events: []model.NoteEvent{
		{Kind: model.Pitched, Step: "C", Octave: 4, DurationClass: "whole", Staff: 1},
	}}}}

	for _, tc := range []struct {
		name      string
		meter     Meter
		num, deno uint8
	}{
		{"common time", CommonTime, 4, 4},
		{"zero means common time", Meter{}, 4, 4},
		{"six eight", Meter{Beats: 6, Value: 8}, 6, 8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteScore(&buf, doc, 120, tc.meter))
			num, denom := meterOf(t, buf.Bytes())
			assert.Equal(t, tc.num, num)
			assert.Equal(t, tc.deno, denom)
		})
	}
}
