// Package logtest provides a ServiceLogger that records entries for assertions.
package logtest

import (
	"sync"

	"github.com/drblury/mediacatalog/internal/runtime/logging"
)

// Entry is one recorded log line. Fields include everything attached through With.
type Entry struct {
	Level  string
	Msg    string
	Fields logging.LogFields
	Err    error
}

// Recorder is safe for concurrent use; children created through With share the
// parent's entry list.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	base    logging.LogFields
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (r *Recorder) With(fields logging.LogFields) logging.ServiceLogger {
	return &Recorder{mu: r.mu, entries: r.entries, base: logging.Merge(r.base, fields)}
}

func (r *Recorder) Debug(msg string, fields logging.LogFields) { r.add("debug", msg, nil, fields) }
func (r *Recorder) Info(msg string, fields logging.LogFields)  { r.add("info", msg, nil, fields) }
func (r *Recorder) Trace(msg string, fields logging.LogFields) { r.add("trace", msg, nil, fields) }

func (r *Recorder) Error(msg string, err error, fields logging.LogFields) {
	r.add("error", msg, err, fields)
}

func (r *Recorder) add(level, msg string, err error, fields logging.LogFields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, Entry{Level: level, Msg: msg, Err: err, Fields: logging.Merge(r.base, fields)})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

// Level returns the recorded entries at the given level.
func (r *Recorder) Level(level string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
