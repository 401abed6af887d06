package output

import (
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/jsphweid/musicbox/engrave"
	"github.com/jsphweid/musicbox/model"
)

type pngCanvas struct {
	dc    *gg.Context
	font  *text.FontSource
	faces map[float64]text.Face
	err   error
}

func (c *pngCanvas) keep(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *pngCanvas) Line(x1, y1, x2, y2, width float64) {
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.keep(c.dc.Stroke())
}

func (c *pngCanvas) Ellipse(cx, cy, rx, ry float64, filled bool) {
	c.dc.DrawEllipse(cx, cy, rx, ry)
	if filled {
		c.keep(c.dc.Fill())
		return
	}
	c.dc.SetLineWidth(1.5)
	c.keep(c.dc.Stroke())
}

func (c *pngCanvas) Rect(x, y, w, h float64) {
	c.dc.DrawRectangle(x, y, w, h)
	c.keep(c.dc.Fill())
}

func (c *pngCanvas) Text(x, y, size float64, s string) {
	if c.font == nil {
		return
	}
	face, ok := c.faces[size]
	if !ok {
		face = c.font.Face(size)
		c.faces[size] = face
	}
	c.dc.SetFont(face)
	c.dc.DrawString(s, x, y)
}

// WritePNG rasterizes r. fontPath may be empty.
func WritePNG(w io.Writer, r *model.Render, fontPath string) error {
	dc := gg.NewContext(int(math.Ceil(r.Width)), int(math.Ceil(r.Height)))
	defer dc.Close()
	dc.ClearWithColor(gg.White)
	dc.SetRGB(0, 0, 0)

	c := &pngCanvas{dc: dc, faces: map[float64]text.Face{}}
	if fontPath != "" {
		src, err := text.NewFontSourceFromFile(fontPath)
		if err != nil {
			return fmt.Errorf("loading font %s: %w", fontPath, err)
		}
		c.font = src
	}

	if err := engrave.Draw(r, c); err != nil {
		return err
	}
	if c.err != nil {
		return c.err
	}
	return dc.EncodePNG(w)
}
