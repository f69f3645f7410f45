package main

import (
	"encoding/json"
	"io"

	"github.com/manojSRawat/sunbird-resource-library/internal/core/events"
)

// eventPrinter writes every event as one JSON line, the way a host page
// would receive them.
func eventPrinter(w io.Writer) events.Sink {
	enc := json.NewEncoder(w)
	return func(ev events.Event) { _ = enc.Encode(ev) }
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
