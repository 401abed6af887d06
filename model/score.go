package model

import "strings"

// Staff numbers as they appear in MusicXML <staff> elements.
const (
	TrebleStaff = 1
	BassStaff   = 2
)

type EventKind int

const (
	Pitched EventKind = iota
	Rest
	ChordMember
)

func (k EventKind) String() string {
	switch k {
	case Rest:
		return "rest"
	case ChordMember:
		return "chord-member"
	default:
		return "pitched"
	}
}

type StemDirection int

const (
	StemUnset StemDirection = iota
	StemUp
	StemDown
)

func (s StemDirection) String() string {
	switch s {
	case StemUp:
		return "up"
	case StemDown:
		return "down"
	default:
		return ""
	}
}

func (s StemDirection) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *StemDirection) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "up":
		*s = StemUp
	case "down":
		*s = StemDown
	default:
		*s = StemUnset
	}
	return nil
}

// ScoreDocument is built once per upload and never mutated afterwards.
type ScoreDocument struct {
	PartID   string
	Measures []Measure
}

type Measure struct {
	Index  int
	Number string
	PartID string
	Events []NoteEvent
}

// StaffEvents returns the events of one staff, in source order.
func (m Measure) StaffEvents(staff int) []NoteEvent {
	var res []NoteEvent
	for _, e := range m.Events {
		if e.Staff == staff {
			res = append(res, e)
		}
	}
	return res
}

type NoteEvent struct {
	Kind          EventKind
	Step          string
	Octave        int
	Alter         int
	DurationClass string
	Ticks         int
	Staff         int
	Stem          StemDirection
}

func (e NoteEvent) IsRest() bool {
	return e.Kind == Rest
}

func (e NoteEvent) IsChordMember() bool {
	return e.Kind == ChordMember
}

// RenderedNote is a resolved NoteEvent. Keys holds the anchor key first and
// then any stacked chord members.
type RenderedNote struct {
	Keys        []string      `json:"keys"`
	Duration    string        `json:"duration"`
	Stem        StemDirection `json:"stem"`
	FlagVisible bool          `json:"flag_visible"`
	IsRest      bool          `json:"rest,omitempty"`
	// Annotations indexes Keys that came from chord members.
	Annotations []int   `json:"annotations,omitempty"`
	Beats       float64 `json:"beats"`

	// kept for MIDI generation, not part of the draw payload
	Pitches []Pitch `json:"-"`
}

type Pitch struct {
	Step   string
	Octave int
	Alter  int
}

type BeamGroup struct {
	Staff    int           `json:"staff"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
	Duration string        `json:"duration"`
	Stem     StemDirection `json:"stem"`
}

func (b BeamGroup) Size() int {
	return b.End - b.Start + 1
}

type LayoutSlot struct {
	Measure           int     `json:"measure"`
	Row               int     `json:"row"`
	Column            int     `json:"column"`
	X                 float64 `json:"x"`
	TrebleY           float64 `json:"treble_y"`
	BassY             float64 `json:"bass_y"`
	StaveWidth        float64 `json:"stave_width"`
	NoteWidth         float64 `json:"note_width"`
	DrawClef          bool    `json:"draw_clef"`
	DrawTimeSignature bool    `json:"draw_time_signature"`
}
