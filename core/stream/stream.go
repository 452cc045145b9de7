package stream

import (
	"bufio"
	"encoding/json"

	"azuread-connector/core/graph"
)

// Source yields records one at a time. Next reports false when the sequence
// ends; Err distinguishes exhaustion from failure. graph.Pager satisfies
// this, as does the planner traversal.
type Source interface {
	Next() (graph.Record, bool)
	Err() error
}

// WriteArray drains the source into w framed as a JSON array: a literal
// '[', comma-separated records, then ']'. The writer is flushed after every
// record, so the consumer starts receiving elements while upstream pages
// are still being fetched and memory stays bounded by one page.
//
// A write or flush error means the consumer went away; production stops
// immediately. A source error mid-stream leaves the array unterminated,
// which the caller is expected to log — the response status is long gone
// by then.
func WriteArray(w *bufio.Writer, src Source) error {
	if err := w.WriteByte('['); err != nil {
		return err
	}

	first := true
	for {
		rec, ok := src.Next()
		if !ok {
			break
		}

		if !first {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		first = false

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if err := src.Err(); err != nil {
		return err
	}

	if err := w.WriteByte(']'); err != nil {
		return err
	}
	return w.Flush()
}
