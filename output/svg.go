package output

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/jsphweid/musicbox/engrave"
	"github.com/jsphweid/musicbox/model"
)

// svgo works in integers, so everything is drawn at ten times the canvas
// size and scaled back down by the viewBox.
const svgScale = 10

func sc(v float64) int {
	return int(math.Round(v * svgScale))
}

type svgCanvas struct {
	s *svg.SVG
}

func (c svgCanvas) Line(x1, y1, x2, y2, width float64) {
	c.s.Line(sc(x1), sc(y1), sc(x2), sc(y2), fmt.Sprintf("stroke:black;stroke-width:%d", sc(width)))
}

func (c svgCanvas) Ellipse(cx, cy, rx, ry float64, filled bool) {
	style := "fill:black"
	if !filled {
		style = fmt.Sprintf("fill:none;stroke:black;stroke-width:%d", sc(1.5))
	}
	c.s.Ellipse(sc(cx), sc(cy), sc(rx), sc(ry), style)
}

func (c svgCanvas) Rect(x, y, w, h float64) {
	c.s.Rect(sc(x), sc(y), sc(w), sc(h), "fill:black")
}

func (c svgCanvas) Text(x, y, size float64, s string) {
	c.s.Text(sc(x), sc(y), s, fmt.Sprintf("font-family:serif;font-weight:bold;font-size:%dpx", sc(size)))
}

func WriteSVG(w io.Writer, r *model.Render) error {
	width, height := int(math.Ceil(r.Width)), int(math.Ceil(r.Height))
	s := svg.New(w)
	s.Startview(width, height, 0, 0, width*svgScale, height*svgScale)
	s.Rect(0, 0, width*svgScale, height*svgScale, "fill:white")
	if err := engrave.Draw(r, svgCanvas{s: s}); err != nil {
		return err
	}
	s.End()
	return nil
}
