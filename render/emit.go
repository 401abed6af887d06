// Package render walks a score document through resolution, beaming and
// layout and emits the draw commands for an external vector renderer.
//
// Emit is a pure function of its inputs: it performs no I/O and produces the
// same command sequence for the same document and options, so callers can
// clear and redraw freely.
package render

import (
	"fmt"
	"math"

	"github.com/jsphweid/musicbox/beam"
	"github.com/jsphweid/musicbox/layout"
	"github.com/jsphweid/musicbox/model"
	"github.com/jsphweid/musicbox/pitch"
)

const ChordAnnotation = "a"

type Options struct {
	Layout    layout.Config
	NumBeats  int
	BeatValue int
	// Strict rejects measures whose staves do not add up to the time
	// signature instead of reporting them as diagnostics.
	Strict bool
}

func DefaultOptions() Options {
	return Options{Layout: layout.DefaultConfig(), NumBeats: 4, BeatValue: 4}
}

func (o Options) TimeSignature() string {
	return fmt.Sprintf("%d/%d", o.NumBeats, o.BeatValue)
}

// MeasureBeats is the expected length of a measure in quarter notes.
func (o Options) MeasureBeats() float64 {
	return float64(o.NumBeats) * 4 / float64(o.BeatValue)
}

// DurationError is returned in strict mode for a staff whose notes do not
// fill the measure.
type DurationError struct {
	Measure int
	Staff   int
	Want    float64
	Got     float64
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("measure %d staff %d lasts %v beats, want %v", e.Measure+1, e.Staff, e.Got, e.Want)
}

type StaffRender struct {
	Staff int
	Notes []model.RenderedNote
	Beams []model.BeamGroup
}

type MeasureRender struct {
	Slot   model.LayoutSlot
	Staves []StaffRender
}

// Prepare resolves, beams and lays out every measure.
func Prepare(doc *model.ScoreDocument, opts Options) ([]MeasureRender, []model.Diagnostic, error) {
	if doc == nil || len(doc.Measures) == 0 {
		return nil, nil, fmt.Errorf("score has no measures")
	}
	if err := opts.Layout.Validate(); err != nil {
		return nil, nil, err
	}
	if opts.NumBeats <= 0 || opts.BeatValue <= 0 {
		return nil, nil, fmt.Errorf("invalid time signature %s", opts.TimeSignature())
	}

	var diags []model.Diagnostic
	res := make([]MeasureRender, 0, len(doc.Measures))
	for i, m := range doc.Measures {
		mr := MeasureRender{Slot: opts.Layout.Slot(i)}
		for _, staff := range []int{model.TrebleStaff, model.BassStaff} {
			notes, d := pitch.ResolveStaff(i, staff, m.StaffEvents(staff))
			diags = append(diags, d...)
			groups, beamed := beam.Group(staff, notes)

			if len(beamed) > 0 {
				d, err := checkDuration(i, staff, beamed, opts)
				if err != nil {
					return nil, nil, err
				}
				diags = append(diags, d...)
			}
			mr.Staves = append(mr.Staves, StaffRender{Staff: staff, Notes: beamed, Beams: groups})
		}
		res = append(res, mr)
	}
	return res, diags, nil
}

func checkDuration(measure, staff int, notes []model.RenderedNote, opts Options) ([]model.Diagnostic, error) {
	var got float64
	for _, n := range notes {
		got += n.Beats
	}
	want := opts.MeasureBeats()
	if math.Abs(got-want) < 1e-9 {
		return nil, nil
	}
	if opts.Strict {
		return nil, &DurationError{Measure: measure, Staff: staff, Want: want, Got: got}
	}
	return []model.Diagnostic{{
		Code:    model.MeasureDurationMismatch,
		Measure: measure,
		Staff:   staff,
		Message: fmt.Sprintf("staff lasts %v beats, time signature %s wants %v", got, opts.TimeSignature(), want),
	}}, nil
}

// Emit produces the full draw command sequence. On error no commands are
// returned.
func Emit(doc *model.ScoreDocument, opts Options) (*model.Render, error) {
	measures, diags, err := Prepare(doc, opts)
	if err != nil {
		return nil, err
	}

	c := opts.Layout
	r := &model.Render{
		Width:       c.CanvasWidth,
		Height:      c.CanvasHeight(len(measures)),
		Diagnostics: diags,
	}
	r.Commands = append(r.Commands, model.DrawCommand{
		Kind:    model.CmdCanvas,
		Measure: -1,
		Width:   r.Width,
		Height:  r.Height,
	})
	for _, mr := range measures {
		r.Commands = append(r.Commands, measureCommands(mr, opts)...)
	}
	return r, nil
}

func measureCommands(mr MeasureRender, opts Options) []model.DrawCommand {
	s := mr.Slot
	h := opts.Layout.StaveHeight
	cmds := []model.DrawCommand{{
		Kind:    model.CmdSeparator,
		Measure: s.Measure,
		X:       s.X,
		Y:       s.TrebleY,
		X2:      s.X,
		Y2:      s.BassY + h,
		Height:  h,
	}}

	staves := []struct {
		staff int
		y     float64
		clef  string
	}{
		{model.TrebleStaff, s.TrebleY, "treble"},
		{model.BassStaff, s.BassY, "bass"},
	}
	for _, st := range staves {
		cmds = append(cmds, model.DrawCommand{
			Kind: model.CmdStave, Measure: s.Measure, Staff: st.staff,
			X: s.X, Y: st.y, Width: s.StaveWidth, Height: h,
		})
		if s.DrawClef {
			cmds = append(cmds, model.DrawCommand{
				Kind: model.CmdClef, Measure: s.Measure, Staff: st.staff,
				X: s.X, Y: st.y, Value: st.clef,
			})
		}
		if s.DrawTimeSignature {
			cmds = append(cmds, model.DrawCommand{
				Kind: model.CmdTimeSignature, Measure: s.Measure, Staff: st.staff,
				X: s.X, Y: st.y, Value: opts.TimeSignature(),
			})
		}
	}

	for i, sr := range mr.Staves {
		if len(sr.Notes) == 0 {
			continue
		}
		y := staves[i].y
		cmds = append(cmds, model.DrawCommand{
			Kind: model.CmdVoice, Measure: s.Measure, Staff: sr.Staff,
			X: s.X, Y: y, Width: s.NoteWidth,
			NumBeats: opts.NumBeats, BeatValue: opts.BeatValue, Strict: opts.Strict,
			Count: len(sr.Notes),
		})
		for j := range sr.Notes {
			note := sr.Notes[j]
			cmds = append(cmds, model.DrawCommand{
				Kind: model.CmdNote, Measure: s.Measure, Staff: sr.Staff, Index: j, Note: &note,
			})
			for _, k := range note.Annotations {
				cmds = append(cmds, model.DrawCommand{
					Kind: model.CmdChordAnnotation, Measure: s.Measure, Staff: sr.Staff,
					Index: k, Value: ChordAnnotation,
				})
			}
		}
		for j := range sr.Beams {
			g := sr.Beams[j]
			cmds = append(cmds, model.DrawCommand{
				Kind: model.CmdBeam, Measure: s.Measure, Staff: sr.Staff, Index: g.Start, Beam: &g,
			})
		}
	}
	return cmds
}
