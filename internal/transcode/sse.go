package transcode

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/drblury/mediacatalog/internal/media"
	"github.com/drblury/mediacatalog/internal/runtime/jsoncodec"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/stream"
)

// Sentinel event ids and comments that end an event stream.
const (
	EndOfStreamID      = "END_OF_STREAM"
	EndOfStreamComment = "End of stream."
	ErrorMarkerID      = "ERROR_MARKER"
	ErrorComment       = "An error has occurred."
)

// ErrSinkClosed is returned by EventWriter.Send after Close.
var ErrSinkClosed = errors.New("transcode: event sink closed")

// Event is one Server-Sent Event. Multi-line comments and data are split
// into one field line per line.
type Event struct {
	Name    string
	ID      string
	Comment string
	Data    string
}

// IsSentinel reports whether e terminates a stream.
func (e Event) IsSentinel() bool {
	return e.ID == EndOfStreamID || e.ID == ErrorMarkerID
}

// AppendTo appends the wire form of e, including the blank line that
// dispatches it.
func (e Event) AppendTo(buf *bytes.Buffer) {
	if e.Name != "" {
		writeField(buf, "event", singleLine(e.Name))
	}
	if e.ID != "" {
		writeField(buf, "id", singleLine(e.ID))
	}
	if e.Comment != "" {
		for _, line := range splitLines(e.Comment) {
			buf.WriteString(": ")
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	for _, line := range splitLines(e.Data) {
		writeField(buf, "data", line)
	}
	buf.WriteByte('\n')
}

func writeField(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteByte('\n')
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func splitLines(s string) []string {
	return strings.Split(lineBreaks.Replace(s), "\n")
}

func singleLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// EventWriter writes events to an HTTP response, flushing after each one.
type EventWriter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	closed  bool
	buf     bytes.Buffer
}

// NewEventWriter sends the event-stream headers and a 200 status.
func NewEventWriter(w http.ResponseWriter) *EventWriter {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	ew := &EventWriter{w: w}
	if flusher, ok := w.(http.Flusher); ok {
		ew.flusher = flusher
		flusher.Flush()
	}
	return ew
}

// Send writes and flushes one event.
func (e *EventWriter) Send(ev Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrSinkClosed
	}

	e.buf.Reset()
	ev.AppendTo(&e.buf)
	if _, err := e.w.Write(e.buf.Bytes()); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// Close stops further sends. The response itself ends when the handler returns.
func (e *EventWriter) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// ItemEvent frames one media item: the kind as event name, the item id, its
// title as a comment and the JSON body as data.
func ItemEvent[T media.Entry](kind media.Kind, item T) (Event, error) {
	data, err := jsoncodec.MarshalString(item)
	if err != nil {
		return Event{}, err
	}
	base := item.Base()
	return Event{Name: string(kind), ID: base.ID, Comment: base.Title, Data: data}, nil
}

// EndEvent is the success sentinel.
func EndEvent(kind media.Kind) Event {
	return Event{Name: string(kind), ID: EndOfStreamID, Comment: EndOfStreamComment, Data: EndOfStreamComment}
}

// ErrorEvent is the failure sentinel; its data is the cause text verbatim.
func ErrorEvent(kind media.Kind, err error) Event {
	return Event{Name: string(kind), ID: ErrorMarkerID, Comment: ErrorComment, Data: err.Error()}
}

// StreamEvents sends every item of s as an event followed by exactly one
// sentinel. A failed write means the client is gone: the stream is closed and
// no sentinel is attempted. The sink is closed before StreamEvents returns.
func StreamEvents[T media.Entry](s stream.Stream[T], sink *EventWriter, kind media.Kind, logger logging.ServiceLogger) error {
	lc := NewLifecycle(sink.Close)
	defer lc.Close()
	lc.Start()

	var sinkErr error
	err := stream.Each(s, func(item T) error {
		ev, err := ItemEvent(kind, item)
		if err != nil {
			return err
		}
		if err := sink.Send(ev); err != nil {
			sinkErr = err
			return err
		}
		return nil
	})

	switch {
	case sinkErr != nil:
		lc.Finish(sinkErr)
		logger.Debug("Event stream client went away", logging.LogFields{"kind": kind, "error": sinkErr.Error()})
		return sinkErr
	case err != nil:
		if !lc.Finish(err) {
			return err
		}
		logger.Error("An error occurred while streaming events", err, logging.LogFields{"kind": kind})
		return sink.Send(ErrorEvent(kind, err))
	}
	if !lc.Finish(nil) {
		return nil
	}
	return sink.Send(EndEvent(kind))
}
