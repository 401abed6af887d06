package model

type CommandKind string

const (
	CmdCanvas          CommandKind = "canvas"
	CmdSeparator       CommandKind = "separator"
	CmdStave           CommandKind = "stave"
	CmdClef            CommandKind = "clef"
	CmdTimeSignature   CommandKind = "time_signature"
	CmdVoice           CommandKind = "voice"
	CmdNote            CommandKind = "note"
	CmdChordAnnotation CommandKind = "chord_annotation"
	CmdBeam            CommandKind = "beam"
)

// DrawCommand is one instruction for an external vector renderer. Only the
// fields relevant to Kind are set.
type DrawCommand struct {
	Kind    CommandKind `json:"kind"`
	Measure int         `json:"measure"`
	Staff   int         `json:"staff,omitempty"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	X2     float64 `json:"x2,omitempty"`
	Y2     float64 `json:"y2,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	// clef: "treble"/"bass"; time_signature: "4/4"; chord_annotation: text
	Value string `json:"value,omitempty"`

	// voice
	NumBeats  int  `json:"num_beats,omitempty"`
	BeatValue int  `json:"beat_value,omitempty"`
	Strict    bool `json:"strict,omitempty"`
	Count     int  `json:"count,omitempty"`

	// note, chord_annotation (key index), beam (first note index)
	Index int           `json:"index"`
	Note  *RenderedNote `json:"note,omitempty"`
	Beam  *BeamGroup    `json:"beam,omitempty"`
}

type DiagnosticCode string

const (
	UnknownDurationClass    DiagnosticCode = "UNKNOWN_DURATION_CLASS"
	IncompleteChordAnchor   DiagnosticCode = "INCOMPLETE_CHORD_ANCHOR"
	MeasureDurationMismatch DiagnosticCode = "MEASURE_DURATION_MISMATCH"
	ExtraPartIgnored        DiagnosticCode = "EXTRA_PART_IGNORED"
)

// Diagnostic records a recoverable irregularity handled with a default.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	Measure int            `json:"measure"`
	Staff   int            `json:"staff,omitempty"`
	Message string         `json:"message"`
}

type Render struct {
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Commands    []DrawCommand `json:"commands"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}
