// Package engrave turns draw commands into primitive shapes. It is the
// reference consumer of the command stream and backs the PNG, PDF and SVG
// outputs.
package engrave

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/musicbox/beam"
	"github.com/jsphweid/musicbox/model"
)

// Canvas receives primitives in drawing order. Coordinates are in canvas
// units with y growing downwards.
type Canvas interface {
	Line(x1, y1, x2, y2, width float64)
	Ellipse(cx, cy, rx, ry float64, filled bool)
	Rect(x, y, w, h float64)
	Text(x, y, size float64, s string)
}

const (
	LineSpacing   = 10.0
	TopLineOffset = 4 * LineSpacing
	StemLength    = 35.0
	HeadRx        = 5.5
	HeadRy        = 4.0
	ClefWidth     = 30.0
	TimeSigWidth  = 20.0
	BeamWidth     = 4.0
	BeamSpacing   = 6.0
)

var stepLines = map[byte]int{'c': 0, 'd': 1, 'e': 2, 'f': 3, 'g': 4, 'a': 5, 'b': 6}

// diatonic index of each staff's top line: F5 for treble, A3 for bass
var topLines = map[int]int{model.TrebleStaff: 3 + 7*5, model.BassStaff: 5 + 7*3}

var flagCounts = map[string]int{"8": 1, "16": 2, "32": 3, "64": 4}

// ParseKey splits a notation key like "c/4" into its diatonic index.
func ParseKey(key string) (int, error) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 || len(parts[0]) == 0 {
		return 0, fmt.Errorf("invalid key %q", key)
	}
	line, ok := stepLines[parts[0][0]]
	if !ok {
		return 0, fmt.Errorf("invalid step in key %q", key)
	}
	octave, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in key %q", key)
	}
	return line + 7*octave, nil
}

type staffKey struct {
	measure int
	staff   int
}

type voiceState struct {
	x, y, width float64
	count       int
	offset      float64
	heads       []head
}

type head struct {
	x, stemX, tipY, topY float64
}

type engraver struct {
	c      Canvas
	voices map[staffKey]*voiceState
}

// Draw replays r onto c.
func Draw(r *model.Render, c Canvas) error {
	e := &engraver{c: c, voices: map[staffKey]*voiceState{}}
	for _, cmd := range r.Commands {
		if err := e.command(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (e *engraver) voice(cmd model.DrawCommand) *voiceState {
	k := staffKey{cmd.Measure, cmd.Staff}
	v, ok := e.voices[k]
	if !ok {
		v = &voiceState{}
		e.voices[k] = v
	}
	return v
}

func (e *engraver) command(cmd model.DrawCommand) error {
	switch cmd.Kind {
	case model.CmdSeparator:
		// top line of the treble stave to the bottom line of the bass stave
		bottom := cmd.Y2 - cmd.Height + TopLineOffset + 4*LineSpacing
		e.c.Line(cmd.X, cmd.Y+TopLineOffset, cmd.X2, bottom, 1)
	case model.CmdStave:
		for i := 0; i < 5; i++ {
			y := cmd.Y + TopLineOffset + float64(i)*LineSpacing
			e.c.Line(cmd.X, y, cmd.X+cmd.Width, y, 1)
		}
	case model.CmdClef:
		letter := "G"
		if cmd.Value == "bass" {
			letter = "F"
		}
		e.c.Text(cmd.X+6, cmd.Y+TopLineOffset+3*LineSpacing, 3*LineSpacing, letter)
		e.voice(cmd).offset += ClefWidth
	case model.CmdTimeSignature:
		num, den, _ := strings.Cut(cmd.Value, "/")
		x := cmd.X + e.voice(cmd).offset + 4
		e.c.Text(x, cmd.Y+TopLineOffset+2*LineSpacing, 2*LineSpacing, num)
		e.c.Text(x, cmd.Y+TopLineOffset+4*LineSpacing, 2*LineSpacing, den)
		e.voice(cmd).offset += TimeSigWidth
	case model.CmdVoice:
		v := e.voice(cmd)
		v.x, v.y, v.width, v.count = cmd.X, cmd.Y, cmd.Width, cmd.Count
	case model.CmdNote:
		if cmd.Note == nil {
			return fmt.Errorf("note command without note in measure %d", cmd.Measure+1)
		}
		return e.note(cmd)
	case model.CmdChordAnnotation:
		v := e.voice(cmd)
		if len(v.heads) == 0 {
			return fmt.Errorf("chord annotation without note in measure %d", cmd.Measure+1)
		}
		h := v.heads[len(v.heads)-1]
		e.c.Text(h.x-3, h.topY-2*LineSpacing, LineSpacing, cmd.Value)
	case model.CmdBeam:
		if cmd.Beam == nil {
			return fmt.Errorf("beam command without group in measure %d", cmd.Measure+1)
		}
		return e.beam(cmd)
	}
	return nil
}

func (e *engraver) noteX(v *voiceState, index int) float64 {
	if v.count == 0 {
		return v.x + v.offset
	}
	// clef and time signature take their room out of the voice width
	step := (v.width - v.offset) / float64(v.count)
	return v.x + v.offset + (float64(index)+0.5)*step
}

func (e *engraver) note(cmd model.DrawCommand) error {
	v := e.voice(cmd)
	n := cmd.Note
	x := e.noteX(v, cmd.Index)
	top := topLines[cmd.Staff]
	if top == 0 {
		top = topLines[model.TrebleStaff]
	}
	yOf := func(pos int) float64 {
		return v.y + TopLineOffset + float64(top-pos)*LineSpacing/2
	}

	minY, maxY := 0.0, 0.0
	for i, key := range n.Keys {
		pos, err := ParseKey(key)
		if err != nil {
			return err
		}
		if n.IsRest {
			// rests sit on the middle line whatever their key
			pos = top - 4
		}
		y := yOf(pos)
		if i == 0 || y < minY {
			minY = y
		}
		if i == 0 || y > maxY {
			maxY = y
		}
		if n.IsRest {
			e.c.Rect(x-HeadRx, y-HeadRy, 2*HeadRx, 2*HeadRy)
			continue
		}
		for p := top - 10; p >= pos; p -= 2 {
			e.c.Line(x-2*HeadRx, yOf(p), x+2*HeadRx, yOf(p), 1)
		}
		for p := top + 2; p <= pos; p += 2 {
			e.c.Line(x-2*HeadRx, yOf(p), x+2*HeadRx, yOf(p), 1)
		}
		filled := n.Duration != "w" && n.Duration != "h"
		e.c.Ellipse(x, y, HeadRx, HeadRy, filled)
	}

	h := head{x: x, topY: minY}
	if n.IsRest || n.Duration == "w" {
		v.heads = append(v.heads, h)
		return nil
	}

	if n.Stem == model.StemDown {
		h.stemX = x - HeadRx
		h.tipY = maxY + StemLength
		e.c.Line(h.stemX, minY, h.stemX, h.tipY, 1)
	} else {
		h.stemX = x + HeadRx
		h.tipY = minY - StemLength
		e.c.Line(h.stemX, maxY, h.stemX, h.tipY, 1)
		h.topY = h.tipY
	}

	if n.FlagVisible && beam.Eligible(*n) {
		dir := 1.0
		if n.Stem == model.StemDown {
			dir = -1
		}
		for k := 0; k < flagCounts[n.Duration]; k++ {
			y := h.tipY + dir*float64(k)*BeamSpacing
			e.c.Line(h.stemX, y, h.stemX+8, y+dir*10, 1.5)
		}
	}
	v.heads = append(v.heads, h)
	return nil
}

func (e *engraver) beam(cmd model.DrawCommand) error {
	v := e.voice(cmd)
	g := cmd.Beam
	if g.Start < 0 || g.End >= len(v.heads) || g.Start >= g.End {
		return fmt.Errorf("beam %d-%d out of range in measure %d", g.Start, g.End, cmd.Measure+1)
	}
	first, last := v.heads[g.Start], v.heads[g.End]
	dir := 1.0
	if g.Stem == model.StemDown {
		dir = -1
	}
	for k := 0; k < flagCounts[g.Duration]; k++ {
		off := dir * float64(k) * BeamSpacing
		e.c.Line(first.stemX, first.tipY+off, last.stemX, last.tipY+off, BeamWidth)
	}
	return nil
}
