package output

import (
	"io"

	"github.com/jsphweid/musicbox/engrave"
	"github.com/jsphweid/musicbox/model"
	"github.com/jung-kurt/gofpdf"
)

type pdfCanvas struct {
	pdf *gofpdf.Fpdf
}

func (c pdfCanvas) Line(x1, y1, x2, y2, width float64) {
	c.pdf.SetLineWidth(width)
	c.pdf.Line(x1, y1, x2, y2)
}

func (c pdfCanvas) Ellipse(cx, cy, rx, ry float64, filled bool) {
	style := "D"
	if filled {
		style = "F"
	}
	c.pdf.SetLineWidth(1.5)
	c.pdf.Ellipse(cx, cy, rx, ry, 0, style)
}

func (c pdfCanvas) Rect(x, y, w, h float64) {
	c.pdf.Rect(x, y, w, h, "F")
}

func (c pdfCanvas) Text(x, y, size float64, s string) {
	c.pdf.SetFont("Helvetica", "B", size)
	c.pdf.Text(x, y, s)
}

// WritePDF lays r out on a single page sized to the canvas, in points.
func WritePDF(w io.Writer, r *model.Render) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: r.Width, Ht: r.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetFillColor(0, 0, 0)

	if err := engrave.Draw(r, pdfCanvas{pdf: pdf}); err != nil {
		return err
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
