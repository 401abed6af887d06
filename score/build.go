// Package score turns a parsed MusicXML tree into a model.ScoreDocument.
package score

import (
	"fmt"
	"strings"

	"github.com/jsphweid/musicbox/model"
)

// MalformedScoreError reports input that is missing required structure.
// Measure and Note are zero-based, -1 when not applicable.
type MalformedScoreError struct {
	Measure int
	Note    int
	Reason  string
}

func (e *MalformedScoreError) Error() string {
	switch {
	case e.Measure < 0:
		return "malformed score: " + e.Reason
	case e.Note < 0:
		return fmt.Sprintf("malformed score: measure %d: %s", e.Measure+1, e.Reason)
	default:
		return fmt.Sprintf("malformed score: measure %d note %d: %s", e.Measure+1, e.Note+1, e.Reason)
	}
}

func malformed(measure, note int, format string, args ...any) error {
	return &MalformedScoreError{Measure: measure, Note: note, Reason: fmt.Sprintf(format, args...)}
}

// Build normalizes tree into a ScoreDocument. Only the first part is kept;
// the returned diagnostics mention any part that was ignored.
func Build(tree map[string]any) (*model.ScoreDocument, []model.Diagnostic, error) {
	if tree == nil {
		return nil, nil, malformed(-1, -1, "empty document")
	}
	root := tree
	if wrapped, ok := asMap(tree["score-partwise"]); ok {
		root = wrapped
	}

	var part map[string]any
	var diags []model.Diagnostic
	parts := asList(root["part"])
	switch {
	case len(parts) > 0:
		p, ok := asMap(parts[0])
		if !ok {
			return nil, nil, malformed(-1, -1, "part is not an element")
		}
		part = p
		for i := 1; i < len(parts); i++ {
			pm, _ := asMap(parts[i])
			diags = append(diags, model.Diagnostic{
				Code:    model.ExtraPartIgnored,
				Measure: -1,
				Message: fmt.Sprintf("part %q ignored, only the first part is laid out", attrOf(pm, "id")),
			})
		}
	case has(root, "measure"):
		part = root
	default:
		return nil, nil, malformed(-1, -1, "document has no measure sequence")
	}

	measures := asList(part["measure"])
	if len(measures) == 0 {
		return nil, nil, malformed(-1, -1, "document has no measure sequence")
	}

	doc := &model.ScoreDocument{PartID: attrOf(part, "id")}
	for i, raw := range measures {
		m, ok := asMap(raw)
		if !ok {
			return nil, nil, malformed(i, -1, "measure is not an element")
		}
		measure, err := buildMeasure(i, m)
		if err != nil {
			return nil, nil, err
		}
		measure.PartID = doc.PartID
		doc.Measures = append(doc.Measures, measure)
	}
	return doc, diags, nil
}

func buildMeasure(index int, m map[string]any) (model.Measure, error) {
	measure := model.Measure{Index: index, Number: attrOf(m, "number")}
	if measure.Number == "" {
		measure.Number = fmt.Sprint(index + 1)
	}

	for j, raw := range asList(m["note"]) {
		n, ok := asMap(raw)
		if !ok {
			continue
		}
		evt, ok, err := buildEvent(index, j, n)
		if err != nil {
			return measure, err
		}
		if ok {
			measure.Events = append(measure.Events, evt)
		}
	}

	if len(measure.Events) == 0 {
		return measure, malformed(index, -1, "measure has no resolvable note events")
	}
	return measure, nil
}

// buildEvent returns ok=false for notes that carry neither a pitch nor a
// rest, such as unpitched percussion.
func buildEvent(measure, note int, n map[string]any) (model.NoteEvent, bool, error) {
	evt := model.NoteEvent{
		Staff: model.TrebleStaff,
		Stem:  parseStem(n),
	}
	if staff, ok := childInt(n, "staff"); ok && (staff == model.TrebleStaff || staff == model.BassStaff) {
		evt.Staff = staff
	}
	if class, ok := childText(n, "type"); ok {
		evt.DurationClass = strings.ToLower(class)
	}
	if ticks, ok := childInt(n, "duration"); ok && ticks > 0 {
		evt.Ticks = ticks
	}

	if has(n, "rest") {
		evt.Kind = model.Rest
		return evt, true, nil
	}

	raw, ok := n["pitch"]
	if !ok {
		return evt, false, nil
	}
	pitch, ok := asMap(raw)
	if !ok {
		return evt, false, malformed(measure, note, "pitch is not an element")
	}
	step, ok := childText(pitch, "step")
	if !ok {
		return evt, false, malformed(measure, note, "pitch missing step")
	}
	step = strings.ToUpper(step)
	if len(step) != 1 || step[0] < 'A' || step[0] > 'G' {
		return evt, false, malformed(measure, note, "invalid step %q", step)
	}
	if _, present := pitch["octave"]; !present {
		return evt, false, malformed(measure, note, "pitch missing octave")
	}
	octave, ok := childInt(pitch, "octave")
	if !ok {
		return evt, false, malformed(measure, note, "invalid octave")
	}
	evt.Step = step
	evt.Octave = octave
	evt.Alter, _ = childInt(pitch, "alter")

	evt.Kind = model.Pitched
	if has(n, "chord") {
		evt.Kind = model.ChordMember
	}
	return evt, true, nil
}

func parseStem(n map[string]any) model.StemDirection {
	s, ok := childText(n, "stem")
	if !ok {
		return model.StemUnset
	}
	switch strings.ToLower(s) {
	case "up":
		return model.StemUp
	case "down":
		return model.StemDown
	default:
		return model.StemUnset
	}
}
