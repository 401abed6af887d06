// Package pitch resolves note events into renderable notes: notation keys,
// duration symbols and stem directions.
package pitch

import (
	"fmt"
	"strings"

	"github.com/jsphweid/musicbox/chord"
	"github.com/jsphweid/musicbox/model"
)

// Rests sit on the middle line of their staff.
const (
	TrebleRestKey = "b/4"
	BassRestKey   = "b/3"
)

const DefaultDuration = "q"

var durationSymbols = map[string]string{
	"whole":   "w",
	"half":    "h",
	"quarter": "q",
	"eighth":  "8",
	"16th":    "16",
	"32nd":    "32",
	"64th":    "64",
}

var symbolBeats = map[string]float64{
	"w":  4,
	"h":  2,
	"q":  1,
	"8":  0.5,
	"16": 0.25,
	"32": 0.125,
	"64": 0.0625,
}

var stepLines = map[string]int{"C": 0, "D": 1, "E": 2, "F": 3, "G": 4, "A": 5, "B": 6}

// DurationSymbol maps a duration class to its symbol. An empty class
// silently means quarter; an unknown one also falls back to quarter but
// reports known=false.
func DurationSymbol(class string) (symbol string, known bool) {
	if class == "" {
		return DefaultDuration, true
	}
	if s, ok := durationSymbols[strings.ToLower(class)]; ok {
		return s, true
	}
	return DefaultDuration, false
}

// Beats returns the length of a duration symbol in quarter notes.
func Beats(symbol string) float64 {
	if b, ok := symbolBeats[symbol]; ok {
		return b
	}
	return 1
}

func Key(e model.NoteEvent) string {
	if e.IsRest() {
		return RestKey(e.Staff)
	}
	return fmt.Sprintf("%s/%d", strings.ToLower(e.Step), e.Octave)
}

func RestKey(staff int) string {
	if staff == model.BassStaff {
		return BassRestKey
	}
	return TrebleRestKey
}

// LineNumber is the diatonic position of a pitch relative to C4.
func LineNumber(step string, octave int) int {
	return stepLines[strings.ToUpper(step)] + 7*(octave-4)
}

// Stem keeps an explicit direction; otherwise notes above B4 point down.
func Stem(e model.NoteEvent) model.StemDirection {
	if e.Stem != model.StemUnset {
		return e.Stem
	}
	if e.IsRest() {
		return model.StemUp
	}
	if LineNumber(e.Step, e.Octave) > 6 {
		return model.StemDown
	}
	return model.StemUp
}

// Resolve turns one stacked position into a RenderedNote. Beam information
// is filled in later; every note starts with a visible flag.
func Resolve(measure int, s chord.Stacked) (model.RenderedNote, []model.Diagnostic) {
	var diags []model.Diagnostic
	anchor := s.Anchor

	symbol, known := DurationSymbol(anchor.DurationClass)
	if !known {
		diags = append(diags, model.Diagnostic{
			Code:    model.UnknownDurationClass,
			Measure: measure,
			Staff:   anchor.Staff,
			Message: fmt.Sprintf("unknown duration class %q, using quarter", anchor.DurationClass),
		})
	}

	rn := model.RenderedNote{
		Keys:        []string{Key(anchor)},
		Duration:    symbol,
		Stem:        Stem(anchor),
		FlagVisible: true,
		IsRest:      anchor.IsRest(),
		Beats:       Beats(symbol),
	}

	if anchor.IsRest() {
		// the renderer picks rest glyphs by tick value
		if anchor.Ticks > 0 {
			rn.Duration = fmt.Sprintf("%dr", anchor.Ticks)
		} else {
			rn.Duration = symbol + "r"
		}
		return rn, diags
	}

	rn.Pitches = append(rn.Pitches, model.Pitch{Step: anchor.Step, Octave: anchor.Octave, Alter: anchor.Alter})
	for _, m := range s.Members {
		rn.Annotations = append(rn.Annotations, len(rn.Keys))
		rn.Keys = append(rn.Keys, Key(m))
		rn.Pitches = append(rn.Pitches, model.Pitch{Step: m.Step, Octave: m.Octave, Alter: m.Alter})
	}
	return rn, diags
}

// ResolveStaff stacks and resolves the events of one staff in one measure.
func ResolveStaff(measure, staff int, events []model.NoteEvent) ([]model.RenderedNote, []model.Diagnostic) {
	stacked, diags := chord.Stack(measure, staff, events)
	notes := make([]model.RenderedNote, 0, len(stacked))
	for _, s := range stacked {
		rn, d := Resolve(measure, s)
		notes = append(notes, rn)
		diags = append(diags, d...)
	}
	return notes, diags
}
