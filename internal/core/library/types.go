package library

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const (
	FieldPrimaryCategory = "primaryCategory"
	FieldStatus          = "status"
)

// TargetCategory is a primary category the caller wants to pick content from.
type TargetCategory struct {
	Name             string `mapstructure:"name" json:"name"`
	TargetObjectType string `mapstructure:"target_object_type" json:"targetObjectType"`
}

// FilterSet maps a filter code to its values. Scalars are one-element lists.
type FilterSet map[string][]string

// Clone returns a copy that shares no slices with f.
func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f))
	for k, v := range f {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Item is one searchable resource.
type Item struct {
	Identifier      string    `json:"identifier"`
	ObjectType      string    `json:"objectType"`
	Name            string    `json:"name"`
	PrimaryCategory string    `json:"primaryCategory,omitempty"`
	MimeType        string    `json:"mimeType,omitempty"`
	LastUpdatedOn   Timestamp `json:"lastUpdatedOn"`
	IsAdded         bool      `json:"isAdded"`
}

// Timestamp accepts epoch milliseconds or the editor's date strings.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	time.RFC3339Nano,
	"2006-01-02",
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		ts.Time = time.Time{}
		return nil
	}
	if b[0] != '"' {
		ms, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(string(b), 64)
			if ferr != nil {
				return err
			}
			ms = int64(f)
		}
		ts.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			ts.Time = t
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339Nano))
}

// SearchRequest is sent to the composite search endpoint.
type SearchRequest struct {
	Query   string            `json:"query"`
	Filters FilterSet         `json:"filters"`
	SortBy  map[string]string `json:"sort_by,omitempty"`
}

// SearchResult carries the per object type partitions of a search response.
type SearchResult struct {
	Count      int
	Partitions map[string][]Item
}
