// Package recognize turns photographed sheet music into MusicXML.
package recognize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsphweid/musicbox/constants"
	"github.com/jsphweid/musicbox/score"
)

var ErrNoImages = errors.New("no images to recognize")

// Error wraps a failure of the recognizer itself.
type Error struct {
	Recognizer string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s recognition failed: %v", e.Recognizer, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Image struct {
	Name string
	Data []byte
}

// Result is what a recognizer produced. Midi is nil when the recognizer
// only outputs notation.
type Result struct {
	MusicXML []byte
	Midi     []byte
}

type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, images []Image) (*Result, error)
}

// FromConfig picks the recognizer named by recognizer.kind.
func FromConfig() (Recognizer, error) {
	switch constants.GetRecognizer() {
	case "oemer", "":
		return &Oemer{Bin: constants.GetOemerBin()}, nil
	case "static":
		return &Static{Dir: constants.GetStaticDir()}, nil
	default:
		return nil, fmt.Errorf("unknown recognizer %q", constants.GetRecognizer())
	}
}

// Oemer runs the oemer command line tool once per page and merges the
// pages in upload order.
type Oemer struct {
	Bin string
}

func (o *Oemer) Name() string { return "oemer" }

func (o *Oemer) Recognize(ctx context.Context, images []Image) (*Result, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	dir, err := os.MkdirTemp("", "musicbox-oemer-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	var pages [][]byte
	for i, img := range images {
		page, err := o.page(ctx, dir, i, img)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	merged, err := score.MergeXML(pages)
	if err != nil {
		return nil, err
	}
	return &Result{MusicXML: merged}, nil
}

func (o *Oemer) page(ctx context.Context, dir string, i int, img Image) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(img.Name))
	if ext == "" {
		ext = ".png"
	}
	in := filepath.Join(dir, fmt.Sprintf("page%d%s", i+1, ext))
	if err := os.WriteFile(in, img.Data, 0644); err != nil {
		return nil, err
	}
	out := filepath.Join(dir, fmt.Sprintf("page%d", i+1))
	if err := os.Mkdir(out, 0755); err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, o.Bin, in, "-o", out)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("oemer failed on %s: %w: %s", img.Name, err, lastLine(stderr.String()))
	}

	found, err := firstWithExt(out, ".musicxml")
	if err != nil {
		return nil, fmt.Errorf("oemer produced no musicxml for %s: %w", img.Name, err)
	}
	return os.ReadFile(found)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func firstWithExt(dir string, exts ...string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, ext := range exts {
			if strings.EqualFold(filepath.Ext(e.Name()), ext) {
				names = append(names, e.Name())
			}
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no %s file in %s", strings.Join(exts, "/"), dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

// Static ignores the images and returns a prepared score and MIDI file
// from Dir, for working on everything downstream of recognition.
type Static struct {
	Dir string
}

func (s *Static) Name() string { return "static" }

func (s *Static) Recognize(ctx context.Context, images []Image) (*Result, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	xmlPath, err := firstWithExt(s.Dir, ".musicxml", ".xml")
	if err != nil {
		return nil, err
	}
	res := &Result{}
	if res.MusicXML, err = os.ReadFile(xmlPath); err != nil {
		return nil, err
	}
	if midiPath, err := firstWithExt(s.Dir, ".mid", ".midi"); err == nil {
		if res.Midi, err = os.ReadFile(midiPath); err != nil {
			return nil, err
		}
	}
	return res, nil
}
