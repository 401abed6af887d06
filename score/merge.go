package score

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/clbanning/mxj/v2"
)

// MergeXML joins MusicXML pages recognized separately into one document:
// the measures of each page's first part are appended to the first page's
// first part and renumbered.
func MergeXML(pages [][]byte) ([]byte, error) {
	switch len(pages) {
	case 0:
		return nil, malformed(-1, -1, "no pages to merge")
	case 1:
		return pages[0], nil
	}

	var first mxj.Map
	var firstPart map[string]any
	var measures []any
	for i, page := range pages {
		m, err := mxj.NewMapXmlReader(bytes.NewReader(page))
		if err != nil {
			return nil, fmt.Errorf("could not parse page %d: %w", i+1, err)
		}
		part, ok := firstPartOf(m)
		if !ok {
			return nil, malformed(-1, -1, "page %d has no measure sequence", i+1)
		}
		if i == 0 {
			first, firstPart = m, part
		}
		measures = append(measures, asList(part["measure"])...)
	}

	for i, raw := range measures {
		if m, ok := asMap(raw); ok {
			m["-number"] = strconv.Itoa(i + 1)
		}
	}
	firstPart["measure"] = measures

	out, err := first.XmlIndent("", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not write merged score: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func firstPartOf(m mxj.Map) (map[string]any, bool) {
	root, ok := asMap(m["score-partwise"])
	if !ok {
		return nil, false
	}
	parts := asList(root["part"])
	if len(parts) == 0 {
		return nil, false
	}
	part, ok := asMap(parts[0])
	if !ok || !has(part, "measure") {
		return nil, false
	}
	return part, true
}
