// Package layout places measures on the canvas: two measures per row, a
// treble stave with its bass stave directly below.
package layout

import (
	"fmt"

	"github.com/jsphweid/musicbox/model"
	"github.com/jsphweid/musicbox/util"
)

type Config struct {
	CanvasWidth    float64
	StaveHeight    float64
	Padding        float64
	WidthFactor    float64
	PaddingFactor  float64
	MeasureMargin  float64
	MeasuresPerRow int
}

func DefaultConfig() Config {
	return Config{
		CanvasWidth:    760,
		StaveHeight:    100,
		Padding:        50,
		WidthFactor:    1,
		PaddingFactor:  1.1,
		MeasureMargin:  40,
		MeasuresPerRow: 2,
	}
}

func (c Config) Validate() error {
	if c.CanvasWidth <= 0 || c.StaveHeight <= 0 || c.MeasuresPerRow <= 0 {
		return fmt.Errorf("invalid layout config: width %v, stave height %v, measures per row %d",
			c.CanvasWidth, c.StaveHeight, c.MeasuresPerRow)
	}
	if c.NoteWidth() <= 0 {
		return fmt.Errorf("canvas width %v leaves no room for notes", c.CanvasWidth)
	}
	return nil
}

// StaveWidth is the usable width of one row.
func (c Config) StaveWidth() float64 {
	return c.CanvasWidth*c.WidthFactor - c.PaddingFactor*c.Padding
}

func (c Config) ColumnWidth() float64 {
	return c.StaveWidth() / float64(c.MeasuresPerRow)
}

// NoteWidth is the width handed to the note formatter for one measure.
func (c Config) NoteWidth() float64 {
	return c.ColumnWidth() - c.MeasureMargin
}

func (c Config) Rows(measureCount int) int {
	return util.CeilDiv(measureCount, c.MeasuresPerRow)
}

func (c Config) CanvasHeight(measureCount int) float64 {
	return float64(c.Rows(measureCount))*(2*c.StaveHeight) + c.Padding
}

// Slot returns the position of the measure at index.
func (c Config) Slot(index int) model.LayoutSlot {
	row := index / c.MeasuresPerRow
	col := index % c.MeasuresPerRow
	treble := c.Padding + float64(row)*2*c.StaveHeight
	return model.LayoutSlot{
		Measure:           index,
		Row:               row,
		Column:            col,
		X:                 c.Padding + float64(col)*c.ColumnWidth(),
		TrebleY:           treble,
		BassY:             treble + c.StaveHeight,
		StaveWidth:        c.ColumnWidth(),
		NoteWidth:         c.NoteWidth(),
		DrawClef:          col == 0,
		DrawTimeSignature: index == 0,
	}
}

func Compute(c Config, measureCount int) []model.LayoutSlot {
	slots := make([]model.LayoutSlot, 0, measureCount)
	for i := 0; i < measureCount; i++ {
		slots = append(slots, c.Slot(i))
	}
	return slots
}
