// Package output writes a rendered score in one of the supported formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jsphweid/musicbox/model"
)

type Format string

const (
	JSON Format = "json"
	PNG  Format = "png"
	PDF  Format = "pdf"
	SVG  Format = "svg"
)

var Formats = []Format{JSON, PNG, PDF, SVG}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

func (f Format) Ext() string {
	return "." + string(f)
}

func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case PDF:
		return "application/pdf"
	case SVG:
		return "image/svg+xml"
	default:
		return "application/json"
	}
}

// Options tweak the raster and vector backends.
type Options struct {
	// FontPath is a TrueType font used for PNG text. Without one the PNG
	// preview has no clef, time signature or annotation glyphs.
	FontPath string
}

func Write(w io.Writer, r *model.Render, f Format, opts Options) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case PNG:
		return WritePNG(w, r, opts.FontPath)
	case PDF:
		return WritePDF(w, r)
	case SVG:
		return WriteSVG(w, r)
	}
	return fmt.Errorf("unknown output format %q", f)
}
