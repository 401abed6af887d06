package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/musicbox/chord"
	"github.com/jsphweid/musicbox/model"
	"github.com/jsphweid/musicbox/pitch"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var stepSemitones = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

const (
	Resolution      = smf.MetricTicks(480)
	DefaultTempo    = 120.0
	DefaultVelocity = 100
)

// Meter is the time signature written to the tempo track. Value is the
// plain denominator (4 for quarter notes), not its power of two.
type Meter struct {
	Beats uint8
	Value uint8
}

var CommonTime = Meter{Beats: 4, Value: 4}

// NoteName spells a MIDI note number with sharps, e.g. 61 -> C#4.
func NoteName(n uint8) string {
	return fmt.Sprintf("%s%d", noteNames[n%12], int(n)/12-1)
}

func isAccidental(n uint8) bool {
	return len(noteNames[n%12]) > 1
}

func ReadMidiFile(filepath string) (*model.NoteQueue, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("Error reading midi file... %w", err)
	}
	return ReadNotes(dat)
}

type pending struct {
	tick     int64
	velocity uint8
}

// ReadNotes flattens every track of a standard MIDI file into a time
// ordered note queue.
func ReadNotes(data []byte) (q *model.NoteQueue, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			q, e = nil, fmt.Errorf("Error parsing midi file... %v", r)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("Error parsing midi file... %w", err)
	}
	if _, ok := s.TimeFormat.(smf.MetricTicks); !ok {
		return nil, errors.New("Error parsing midi file... only metric time format is supported")
	}

	res := &model.NoteQueue{}
	seconds := func(tick int64) float64 {
		return float64(s.TimeAt(tick)) / 1e6
	}
	for _, track := range s.Tracks {
		var tick int64
		open := map[[2]uint8][]pending{}
		for _, ev := range track {
			tick += int64(ev.Delta)
			var channel, key, velocity uint8
			isOn := ev.Message.GetNoteOn(&channel, &key, &velocity)
			switch {
			case isOn && velocity > 0:
				k := [2]uint8{channel, key}
				open[k] = append(open[k], pending{tick: tick, velocity: velocity})
			// a note on with velocity 0 ends the note too
			case isOn || ev.Message.GetNoteOff(&channel, &key, &velocity):
				k := [2]uint8{channel, key}
				if len(open[k]) == 0 {
					continue
				}
				start := open[k][0]
				open[k] = open[k][1:]
				t := seconds(start.tick)
				end := seconds(tick)
				res.Notes = append(res.Notes, model.ScheduledNote{
					Name:     NoteName(key),
					Midi:     key,
					Time:     t,
					Duration: end - t,
					Velocity: float64(start.velocity) / 127,
					Width:    width(key),
				})
				if end > res.Duration {
					res.Duration = end
				}
			}
		}
	}

	sort.SliceStable(res.Notes, func(i, j int) bool {
		if res.Notes[i].Time != res.Notes[j].Time {
			return res.Notes[i].Time < res.Notes[j].Time
		}
		return res.Notes[i].Midi < res.Notes[j].Midi
	})
	return res, nil
}

func width(n uint8) int {
	if isAccidental(n) {
		return 1
	}
	return 2
}

// ActiveAt returns the notes sounding at t seconds.
func ActiveAt(q *model.NoteQueue, t float64) []uint8 {
	var res []uint8
	for _, n := range q.Notes {
		if n.Time <= t && n.Time+n.Duration > t {
			res = append(res, n.Midi)
		}
	}
	return res
}

// From drops the notes that have finished by t, for resuming playback.
func From(q *model.NoteQueue, t float64) *model.NoteQueue {
	res := &model.NoteQueue{Duration: q.Duration}
	for _, n := range q.Notes {
		if n.Time+n.Duration > t {
			res.Notes = append(res.Notes, n)
		}
	}
	return res
}

// Number converts a pitched event to its MIDI note number.
func Number(e model.NoteEvent) (uint8, error) {
	semi, ok := stepSemitones[e.Step]
	if !ok {
		return 0, fmt.Errorf("invalid step %q", e.Step)
	}
	n := (e.Octave+1)*12 + semi + e.Alter
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("%s%d is outside the MIDI range", e.Step, e.Octave)
	}
	return uint8(n), nil
}

func ticks(e model.NoteEvent) uint32 {
	sym, _ := pitch.DurationSymbol(e.DurationClass)
	return uint32(pitch.Beats(sym) * float64(Resolution))
}

type timed struct {
	tick uint32
	on   bool
	key  uint8
}

// FromScore writes a type 1 file with a tempo track followed by one track
// per staff. Chord members start with their anchor. A zero meter means
// common time.
func FromScore(doc *model.ScoreDocument, bpm float64, meter Meter) (*smf.SMF, error) {
	if doc == nil {
		return nil, errors.New("no score")
	}
	if bpm <= 0 {
		bpm = DefaultTempo
	}
	if meter.Beats == 0 || meter.Value == 0 {
		meter = CommonTime
	}

	s := smf.New()
	s.TimeFormat = Resolution

	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaTrackSequenceName(doc.PartID))
	tempoTrack.Add(0, smf.MetaTempo(bpm))
	tempoTrack.Add(0, smf.MetaTimeSig(meter.Beats, meter.Value, 24, 8))
	tempoTrack.Close(0)
	if err := s.Add(tempoTrack); err != nil {
		return nil, err
	}

	staves := []int{model.TrebleStaff, model.BassStaff}

	// both staves start each measure together, after the longer staff of
	// the previous measure
	starts := make([]uint32, len(doc.Measures))
	var next uint32
	for i, m := range doc.Measures {
		starts[i] = next
		var longest uint32
		for _, staff := range staves {
			stacked, _ := chord.Stack(i, staff, m.StaffEvents(staff))
			var total uint32
			for _, st := range stacked {
				total += ticks(st.Anchor)
			}
			longest = max(longest, total)
		}
		next += longest
	}

	for _, staff := range staves {
		var events []timed
		for i, m := range doc.Measures {
			cursor := starts[i]
			stacked, _ := chord.Stack(i, staff, m.StaffEvents(staff))
			for _, st := range stacked {
				length := ticks(st.Anchor)
				if !st.Anchor.IsRest() {
					for _, e := range append([]model.NoteEvent{st.Anchor}, st.Members...) {
						key, err := Number(e)
						if err != nil {
							return nil, fmt.Errorf("measure %d: %w", i+1, err)
						}
						events = append(events, timed{cursor, true, key}, timed{cursor + length, false, key})
					}
				}
				cursor += length
			}
		}
		if len(events) == 0 {
			continue
		}

		// note offs sort before note ons on the same tick
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].tick != events[j].tick {
				return events[i].tick < events[j].tick
			}
			return !events[i].on && events[j].on
		})

		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("Staff %d", staff)))
		channel := uint8(staff - 1)
		var last uint32
		for _, ev := range events {
			delta := ev.tick - last
			last = ev.tick
			if ev.on {
				track.Add(delta, midi.NoteOn(channel, ev.key, DefaultVelocity))
			} else {
				track.Add(delta, midi.NoteOff(channel, ev.key))
			}
		}
		track.Close(0)
		if err := s.Add(track); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func WriteScore(w io.Writer, doc *model.ScoreDocument, bpm float64, meter Meter) error {
	s, err := FromScore(doc, bpm, meter)
	if err != nil {
		return err
	}
	_, err = s.WriteTo(w)
	return err
}
