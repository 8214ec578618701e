package transcode

import (
	"net/http"

	"github.com/drblury/mediacatalog/internal/runtime/jsoncodec"
	"github.com/drblury/mediacatalog/internal/stream"
)

// Buffered is a complete list response: every item in emission order on
// success, or the terminal error.
type Buffered[T any] struct {
	Status int
	Items  []T
	Err    error
}

// Buffer drains s before returning. Items delivered before a failure are
// discarded; the error alone is reported.
func Buffer[T any](s stream.Stream[T]) Buffered[T] {
	lc := NewLifecycle(s.Close)
	defer lc.Close()
	lc.Start()

	items, err := stream.Collect(s)
	lc.Finish(err)
	if err != nil {
		return Buffered[T]{Status: http.StatusBadRequest, Items: []T{}, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return Buffered[T]{Status: http.StatusOK, Items: items}
}

// Write sends the response: the JSON array with 200, or the error message as
// plain text with 400.
func (b Buffered[T]) Write(w http.ResponseWriter) error {
	if b.Err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(b.Status)
		_, err := w.Write([]byte(b.Err.Error()))
		return err
	}

	body, err := jsoncodec.Marshal(b.Items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.Status)
	_, err = w.Write(body)
	return err
}
