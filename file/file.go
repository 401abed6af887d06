package file

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("invalid resource name")

// NewName returns a fresh resource name that keeps the extension of
// original, e.g. "page1.PNG" -> "3f2c...e1.png".
func NewName(original string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(original))
}

// WithExt swaps the extension of a resource name.
func WithExt(name, ext string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// CheckName rejects anything that is not a single path element.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ErrInvalidName
	}
	return nil
}

func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".musicxml":
		return "application/vnd.recordare.musicxml+xml"
	case ".xml":
		return "application/xml"
	case ".mid", ".midi":
		return "audio/midi"
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// CreateNameMap assigns a fresh resource name to each original file name,
// mapping it to the original's index so repeated names stay distinct.
func CreateNameMap(originals []string) map[string]int {
	res := make(map[string]int, len(originals))
	for i, v := range originals {
		res[NewName(v)] = i
	}
	return res
}
