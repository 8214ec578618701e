package transcode

import (
	"bufio"
	"io"
	"strings"
)

// MaxEventLine bounds a single line of an incoming event stream.
const MaxEventLine = 4 << 20

// EventReader parses a text/event-stream body into events.
type EventReader struct {
	scanner *bufio.Scanner
}

// NewEventReader reads events from r.
func NewEventReader(r io.Reader) *EventReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxEventLine)
	return &EventReader{scanner: scanner}
}

// Next returns the next dispatched event. It returns io.EOF when the body ends;
// a partial event without its terminating blank line is discarded.
func (r *EventReader) Next() (Event, error) {
	var (
		ev       Event
		data     []string
		comments []string
		seen     bool
	)
	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")
		if line == "" {
			if !seen {
				continue
			}
			ev.Data = strings.Join(data, "\n")
			ev.Comment = strings.Join(comments, "\n")
			return ev, nil
		}
		seen = true

		if strings.HasPrefix(line, ":") {
			comments = append(comments, strings.TrimPrefix(line[1:], " "))
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			ev.Name = value
		case "id":
			ev.ID = value
		case "data":
			data = append(data, value)
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}
