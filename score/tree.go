package score

import (
	"math"
	"strconv"
	"strings"
)

// The input tree can come from several XML-to-object conventions. Text is
// either a bare value ("C", 4) or wrapped ({"_text": "C"}, {"#text": "C"});
// attributes are prefixed with "-" or grouped under "_attributes".

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// asList reverses arity-1 collapsing: a single object becomes a one-element
// sequence and a missing value becomes an empty one.
func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []map[string]any:
		res := make([]any, 0, len(t))
		for _, m := range t {
			res = append(res, m)
		}
		return res
	default:
		return []any{t}
	}
}

func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	case map[string]any:
		for _, key := range []string{"_text", "#text"} {
			if inner, ok := t[key]; ok {
				return textOf(inner)
			}
		}
	case []any:
		if len(t) == 1 {
			return textOf(t[0])
		}
	}
	return "", false
}

func childText(m map[string]any, name string) (string, bool) {
	v, ok := m[name]
	if !ok {
		return "", false
	}
	s, ok := textOf(v)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func childInt(m map[string]any, name string) (int, bool) {
	s, ok := childText(m, name)
	if !ok {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(f)), true
}

func has(m map[string]any, name string) bool {
	_, ok := m[name]
	return ok
}

func attrOf(m map[string]any, name string) string {
	if s, ok := childText(m, "-"+name); ok {
		return s
	}
	if attrs, ok := asMap(m["_attributes"]); ok {
		if s, ok := childText(attrs, name); ok {
			return s
		}
	}
	return ""
}
