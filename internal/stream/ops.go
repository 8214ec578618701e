package stream

import (
	"errors"
	"io"
	"sync"
)

type mapped[T, U any] struct {
	src  Stream[T]
	fn   func(T) (U, error)
	mu   sync.Mutex
	term error
}

// Map converts every item of src with fn. The first conversion error closes
// src and becomes the terminal error.
func Map[T, U any](src Stream[T], fn func(T) (U, error)) Stream[U] {
	return &mapped[T, U]{src: src, fn: fn}
}

func (m *mapped[T, U]) Recv() (U, error) {
	var zero U
	m.mu.Lock()
	term := m.term
	m.mu.Unlock()
	if term != nil {
		return zero, term
	}
	item, err := m.src.Recv()
	if err != nil {
		return zero, err
	}
	out, err := m.fn(item)
	if err != nil {
		m.mu.Lock()
		m.term = err
		m.mu.Unlock()
		_ = m.src.Close()
		return zero, err
	}
	return out, nil
}

func (m *mapped[T, U]) Close() error { return m.src.Close() }

// Terminal is invoked exactly once per observed stream with the number of items
// delivered and the terminal error: nil on normal completion, the stream's
// error, or ErrClosed when the consumer closed early.
type Terminal func(items int, err error)

type observed[T any] struct {
	src   Stream[T]
	done  Terminal
	once  sync.Once
	mu    sync.Mutex
	count int
}

// Observe wraps src so that done fires exactly once when the stream ends,
// whichever of completion, failure or Close happens first.
func Observe[T any](src Stream[T], done Terminal) Stream[T] {
	return &observed[T]{src: src, done: done}
}

func (o *observed[T]) Recv() (T, error) {
	item, err := o.src.Recv()
	if err == nil {
		o.mu.Lock()
		o.count++
		o.mu.Unlock()
		return item, nil
	}
	if errors.Is(err, io.EOF) {
		o.finish(nil)
	} else {
		o.finish(err)
	}
	return item, err
}

func (o *observed[T]) Close() error {
	o.finish(ErrClosed)
	return o.src.Close()
}

func (o *observed[T]) finish(err error) {
	o.once.Do(func() {
		o.mu.Lock()
		n := o.count
		o.mu.Unlock()
		o.done(n, err)
	})
}

// Each calls fn for every item until the stream ends. It returns nil on normal
// completion, the terminal error, or the first error returned by fn. The
// stream is closed before Each returns.
func Each[T any](s Stream[T], fn func(T) error) error {
	defer s.Close()
	for {
		item, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Collect drains s into a slice. On failure the items received so far are
// returned alongside the error.
func Collect[T any](s Stream[T]) ([]T, error) {
	var out []T
	err := Each(s, func(item T) error {
		out = append(out, item)
		return nil
	})
	return out, err
}
