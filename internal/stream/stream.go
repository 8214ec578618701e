// Package stream implements the lazy, finite sequences returned by every catalog
// operation.
//
// A Stream delivers zero or more items followed by exactly one terminal signal:
// io.EOF for normal completion or any other error. Producers run on their own
// goroutine and hand items over through a bounded channel, so a slow consumer
// blocks the producer instead of growing a buffer. Close cancels the producer.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// DefaultBuffer is the channel capacity used when no WithBuffer option is given.
const DefaultBuffer = 64

// ErrClosed is reported to observers when the consumer closes a stream before
// it reached its terminal signal.
var ErrClosed = errors.New("stream: closed by consumer")

// Stream is a pull-based sequence of T.
type Stream[T any] interface {
	// Recv returns the next item. After the last item it returns io.EOF, or the
	// terminal error, and keeps returning it on every later call.
	Recv() (T, error)
	// Close releases the producer. It is safe to call more than once and from a
	// goroutine other than the one calling Recv.
	Close() error
}

// Emit hands one item to the consumer. It blocks while the buffer is full and
// returns the context error once the consumer has gone away.
type Emit[T any] func(item T) error

// Producer generates the items of a stream. Returning nil completes the stream;
// any other error becomes its terminal error.
type Producer[T any] func(ctx context.Context, emit Emit[T]) error

type options struct {
	buffer int
	pool   *Pool
}

// Option tunes New.
type Option func(*options)

// WithBuffer sets the hand-over buffer size. Values below 1 mean unbuffered.
func WithBuffer(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.buffer = n
	}
}

// WithPool admits the producer goroutine through p.
func WithPool(p *Pool) Option {
	return func(o *options) { o.pool = p }
}

type chanStream[T any] struct {
	items     chan T
	err       error
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New starts produce on its own goroutine and returns the consuming end.
// Cancelling ctx, or calling Close, cancels the context seen by produce.
func New[T any](ctx context.Context, produce Producer[T], opts ...Option) Stream[T] {
	o := options{buffer: DefaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &chanStream[T]{
		items:  make(chan T, o.buffer),
		cancel: cancel,
	}
	go s.run(ctx, produce, o.pool)
	return s
}

func (s *chanStream[T]) run(ctx context.Context, produce Producer[T], pool *Pool) {
	s.err = s.produce(ctx, produce, pool)
	s.cancel()
	// err is written before close so every receive observing the close sees it.
	close(s.items)
}

func (s *chanStream[T]) produce(ctx context.Context, produce Producer[T], pool *Pool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stream: producer panic: %v", r)
		}
	}()
	if pool != nil {
		if err := pool.Acquire(ctx); err != nil {
			return err
		}
		defer pool.Release()
	}
	return produce(ctx, func(item T) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case s.items <- item:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (s *chanStream[T]) Recv() (T, error) {
	item, ok := <-s.items
	if ok {
		return item, nil
	}
	var zero T
	if s.err != nil {
		return zero, s.err
	}
	return zero, io.EOF
}

// Close cancels the producer and waits for it to unwind, so cursors and
// connections held by the producer are released when Close returns.
func (s *chanStream[T]) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		for range s.items {
		}
	})
	return nil
}

type failed[T any] struct {
	err error
}

// Fail returns a stream whose first Recv reports err. A nil err yields an
// empty stream.
func Fail[T any](err error) Stream[T] {
	if err == nil {
		err = io.EOF
	}
	return failed[T]{err: err}
}

func (f failed[T]) Recv() (T, error) {
	var zero T
	return zero, f.err
}

func (failed[T]) Close() error { return nil }

type sliceStream[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
}

// FromSlice streams the given items in order. The slice is not copied.
func FromSlice[T any](items []T) Stream[T] {
	return &sliceStream[T]{items: items}
}

func (s *sliceStream[T]) Recv() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.closed {
		return zero, ErrClosed
	}
	if len(s.items) == 0 {
		return zero, io.EOF
	}
	item := s.items[0]
	s.items = s.items[1:]
	return item, nil
}

func (s *sliceStream[T]) Close() error {
	s.mu.Lock()
	s.closed = true
	s.items = nil
	s.mu.Unlock()
	return nil
}
