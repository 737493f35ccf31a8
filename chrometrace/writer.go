package chrometrace

import (
	"encoding/json"
	"io"
)

// Writer streams trace events as a JSON array without holding them all in
// memory. Events go out as they are written; Close terminates the array.
type Writer struct {
	w     io.Writer
	first bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, first: true}
}

func (wr *Writer) WriteEvent(e TraceEvent) error {
	sep := ",\n"
	if wr.first {
		sep = "[\n"
		wr.first = false
	}

	if _, err := io.WriteString(wr.w, sep); err != nil {
		return err
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	_, err = wr.w.Write(b)

	return err
}

// Close terminates the array. The underlying writer stays open.
func (wr *Writer) Close() error {
	if wr.first {
		wr.first = false
		_, err := io.WriteString(wr.w, "[]\n")

		return err
	}

	_, err := io.WriteString(wr.w, "\n]\n")

	return err
}
