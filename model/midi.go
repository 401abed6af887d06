package model

// ScheduledNote is one note of a MIDI file as the player schedules it.
// Time and Duration are seconds, Velocity is normalized to 0..1.
type ScheduledNote struct {
	Name     string  `json:"name"`
	Midi     uint8   `json:"midi"`
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	Velocity float64 `json:"velocity"`
	// keyboard width: 1 for black keys, 2 for white keys
	Width int `json:"width"`
}

type NoteQueue struct {
	Notes    []ScheduledNote `json:"notes"`
	Duration float64         `json:"duration"`
}
