package model

import "time"

type ProcessResult struct {
	MusicXML string `json:"musicxml"`
	Midi     string `json:"midi"`
	Pdf      string `json:"pdf,omitempty"`
	// stored uploads, in upload order
	Images []string `json:"images,omitempty"`
}

// ScoreMetadata is recorded for every processed upload, keyed by the
// MusicXML resource name.
type ScoreMetadata struct {
	MusicXML     string    `json:"musicxml"`
	Midi         string    `json:"midi"`
	Pdf          string    `json:"pdf,omitempty"`
	Images       int       `json:"images"`
	MeasureCount int       `json:"measure_count"`
	CreatedAt    time.Time `json:"created_at"`
}
