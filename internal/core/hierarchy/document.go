package hierarchy

import (
	"fmt"
	"strings"
)

// Document is a raw hierarchy node as returned by the editor API. Field access
// goes through the typed accessors below so that absent or oddly typed fields
// fall back to a fixed default instead of failing.
type Document map[string]any

// String returns the field as text; missing or null fields yield "".
func (d Document) String(key string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// OptString returns nil when the field is missing or empty.
func (d Document) OptString(key string) *string {
	s := d.String(key)
	if s == "" {
		return nil
	}
	return &s
}

// Present returns the field when the key exists with a non-null value, even
// if that value is empty.
func (d Document) Present(key string) *string {
	v, ok := d[key]
	if !ok || v == nil {
		return nil
	}
	s := d.String(key)
	return &s
}

// Has reports whether key exists, regardless of its value.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Values coerces a scalar or list field into a list of strings. Falsy values
// (missing, null, "", false, 0) yield nil.
func (d Document) Values(key string) []string {
	return coerceList(d[key])
}

// Children returns the nested child documents in order.
func (d Document) Children() []Document {
	switch raw := d["children"].(type) {
	case []Document:
		return raw
	case []map[string]any:
		out := make([]Document, 0, len(raw))
		for _, m := range raw {
			out = append(out, Document(m))
		}
		return out
	case []any:
		out := make([]Document, 0, len(raw))
		for _, it := range raw {
			switch m := it.(type) {
			case map[string]any:
				out = append(out, Document(m))
			case Document:
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// ChildNodes lists the identifiers already attached to the collection.
func ChildNodes(d Document) []string {
	return d.Values("childNodes")
}

// FrameworkID prefers targetFWIds over framework and takes the first element
// when the field is a list.
func FrameworkID(d Document) string {
	key := "framework"
	if d.Has("targetFWIds") {
		key = "targetFWIds"
	}
	if vals := d.Values(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// RootFromResult picks the hierarchy root out of a hierarchy response result.
func RootFromResult(result map[string]any) (Document, bool) {
	for _, key := range []string{"Question", "questionSet", "content"} {
		if m, ok := result[key].(map[string]any); ok && len(m) > 0 {
			return Document(m), true
		}
	}
	return nil, false
}

func coerceList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		return []string{x}
	case bool:
		if !x {
			return nil
		}
		return []string{"true"}
	case float64:
		if x == 0 {
			return nil
		}
		return []string{fmt.Sprint(x)}
	case int:
		if x == 0 {
			return nil
		}
		return []string{fmt.Sprint(x)}
	case []string:
		return append([]string{}, x...)
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			if it == nil {
				continue
			}
			if s, ok := it.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(it))
		}
		return out
	default:
		return []string{fmt.Sprint(x)}
	}
}
