package score

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/clbanning/mxj/v2"
	"github.com/jsphweid/musicbox/model"
)

// ParseXML converts a MusicXML document into the nested tree Build expects.
func ParseXML(r io.Reader) (map[string]any, error) {
	m, err := mxj.NewMapXmlReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse musicxml: %w", err)
	}
	return map[string]any(m), nil
}

// ParseJSON decodes a tree that was converted from MusicXML elsewhere.
func ParseJSON(r io.Reader) (map[string]any, error) {
	m, err := mxj.NewMapJsonReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse score json: %w", err)
	}
	return map[string]any(m), nil
}

// Decode sniffs data: a leading '{' means JSON, anything else is XML.
func Decode(data []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &MalformedScoreError{Measure: -1, Note: -1, Reason: "empty document"}
	}
	if trimmed[0] == '{' {
		return ParseJSON(bytes.NewReader(trimmed))
	}
	return ParseXML(bytes.NewReader(trimmed))
}

// Read decodes and builds a document in one step.
func Read(data []byte) (*model.ScoreDocument, []model.Diagnostic, error) {
	tree, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}
	return Build(tree)
}

func Load(path string) (*model.ScoreDocument, []model.Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var tree map[string]any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		tree, err = ParseJSON(f)
	} else {
		tree, err = ParseXML(f)
	}
	if err != nil {
		return nil, nil, err
	}
	return Build(tree)
}
