package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/runtime/ids"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/stream"
)

const tracerName = "github.com/drblury/mediacatalog/internal/catalog"

// DefaultCallTimeout bounds how long a single catalog stream may stay open.
const DefaultCallTimeout = 5 * time.Minute

// InstrumentOptions configures NewInstrumented.
type InstrumentOptions struct {
	// Provider is the label value used in logs, spans and metrics.
	Provider string
	Logger   logging.ServiceLogger
	// Recorder may be nil to disable metrics.
	Recorder Recorder
	// Hooks run after the built-in logging and recorder hooks.
	Hooks  CallHooks
	Tracer trace.Tracer
	// Timeout is applied to every call. Zero disables it.
	Timeout time.Duration
}

// Instrumented decorates a Catalog with timing, logging and tracing. Each call
// starts its clock before delegating and stops it exactly once, when the
// returned stream completes, fails or is closed by the consumer.
type Instrumented struct {
	inner    Catalog
	provider string
	hooks    CallHooks
	tracer   trace.Tracer
	timeout  time.Duration
}

var _ Catalog = (*Instrumented)(nil)

// NewInstrumented wraps inner.
func NewInstrumented(inner Catalog, opts InstrumentOptions) (*Instrumented, error) {
	if inner == nil {
		return nil, rterrors.ErrCatalogRequired
	}
	if opts.Logger == nil {
		return nil, rterrors.ErrLoggerRequired
	}
	if opts.Provider == "" {
		opts.Provider = "unknown"
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	hooks := LoggingHooks(opts.Logger)
	if opts.Recorder != nil {
		hooks = hooks.Merge(RecorderHooks(opts.Recorder))
	}
	return &Instrumented{
		inner:    inner,
		provider: opts.Provider,
		hooks:    hooks.Merge(opts.Hooks),
		tracer:   opts.Tracer,
		timeout:  opts.Timeout,
	}, nil
}

// Provider is the label this catalog reports under.
func (c *Instrumented) Provider() string { return c.provider }

type streamIDKey struct{}

// WithStreamID makes the next instrumented call on ctx use id instead of
// generating one, so transports can echo it back to clients.
func WithStreamID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, streamIDKey{}, id)
}

// StreamID returns the id set by WithStreamID.
func StreamID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(streamIDKey{}).(string)
	return id, ok && id != ""
}

func (c *Instrumented) Movies(ctx context.Context) stream.Stream[media.Movie] {
	return invoke(c, ctx, OpMovies, nil, c.inner.Movies)
}

func (c *Instrumented) SearchMovies(ctx context.Context, text string) stream.Stream[media.Movie] {
	return invoke(c, ctx, OpSearchMovies, logging.LogFields{"text": text}, func(ctx context.Context) stream.Stream[media.Movie] {
		return c.inner.SearchMovies(ctx, text)
	})
}

func (c *Instrumented) Audio(ctx context.Context) stream.Stream[media.Audio] {
	return invoke(c, ctx, OpAudio, nil, c.inner.Audio)
}

func (c *Instrumented) SearchAudio(ctx context.Context, text string) stream.Stream[media.Audio] {
	return invoke(c, ctx, OpSearchAudio, logging.LogFields{"text": text}, func(ctx context.Context) stream.Stream[media.Audio] {
		return c.inner.SearchAudio(ctx, text)
	})
}

func (c *Instrumented) AudioTracks(ctx context.Context, album string) stream.Stream[media.Audio] {
	return invoke(c, ctx, OpAudioTracks, logging.LogFields{"album": album}, func(ctx context.Context) stream.Stream[media.Audio] {
		return c.inner.AudioTracks(ctx, album)
	})
}

func (c *Instrumented) TelevisionShows(ctx context.Context) stream.Stream[media.TelevisionShow] {
	return invoke(c, ctx, OpTelevisionShows, nil, c.inner.TelevisionShows)
}

func (c *Instrumented) SearchTelevisionShows(ctx context.Context, text string) stream.Stream[media.TelevisionShow] {
	return invoke(c, ctx, OpSearchTelevisionShows, logging.LogFields{"text": text}, func(ctx context.Context) stream.Stream[media.TelevisionShow] {
		return c.inner.SearchTelevisionShows(ctx, text)
	})
}

func (c *Instrumented) Episodes(ctx context.Context, series string, season int) stream.Stream[media.TelevisionShow] {
	args := logging.LogFields{"series": series, "season": season}
	return invoke(c, ctx, OpEpisodes, args, func(ctx context.Context) stream.Stream[media.TelevisionShow] {
		return c.inner.Episodes(ctx, series, season)
	})
}

// EpisodesArg is Episodes for a season that has not been parsed yet. Parsing
// happens inside the call, so a malformed season is timed, logged and counted
// like any other failure.
func (c *Instrumented) EpisodesArg(ctx context.Context, series, season string) stream.Stream[media.TelevisionShow] {
	args := logging.LogFields{"series": series, "season": season}
	return invoke(c, ctx, OpEpisodes, args, func(ctx context.Context) stream.Stream[media.TelevisionShow] {
		n, err := SeasonArg(season)
		if err != nil {
			return stream.Fail[media.TelevisionShow](err)
		}
		return c.inner.Episodes(ctx, series, n)
	})
}

func (c *Instrumented) Series(ctx context.Context, series string) stream.Stream[media.TelevisionShow] {
	return invoke(c, ctx, OpSeries, logging.LogFields{"series": series}, func(ctx context.Context) stream.Stream[media.TelevisionShow] {
		return c.inner.Series(ctx, series)
	})
}

func invoke[T any](c *Instrumented, ctx context.Context, op Operation, args logging.LogFields, call func(context.Context) stream.Stream[T]) stream.Stream[T] {
	streamID, ok := StreamID(ctx)
	if !ok {
		streamID = ids.NewStreamID()
	}

	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	ctx, span := c.tracer.Start(ctx, "catalog."+op.String(), trace.WithAttributes(spanAttributes(c.provider, op, streamID, args)...))

	info := CallContext{
		Provider:  c.provider,
		Operation: op,
		StreamID:  streamID,
		Args:      args,
		Context:   ctx,
		StartedAt: time.Now(),
	}
	c.hooks.start(info)

	s := delegate(ctx, call)
	return stream.Observe(s, func(items int, err error) {
		defer cancel()
		info.Duration = time.Since(info.StartedAt)
		info.Items = items
		info.Outcome = OutcomeOf(err)

		span.SetAttributes(
			attribute.Int("catalog.items", items),
			attribute.String("catalog.outcome", string(info.Outcome)),
		)
		if info.Outcome == OutcomeError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		c.hooks.finish(info, err)
	})
}

// delegate converts a panicking or nil-returning provider into an errored stream.
func delegate[T any](ctx context.Context, call func(context.Context) stream.Stream[T]) (s stream.Stream[T]) {
	defer func() {
		if r := recover(); r != nil {
			s = stream.Fail[T](fmt.Errorf("catalog: provider panic: %v", r))
		}
	}()
	s = call(ctx)
	if s == nil {
		s = stream.Fail[T](errors.New("catalog: provider returned no stream"))
	}
	return s
}

func spanAttributes(provider string, op Operation, streamID string, args logging.LogFields) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("catalog.provider", provider),
		attribute.String("catalog.operation", op.String()),
		attribute.String("catalog.stream_id", streamID),
	}
	for k, v := range args {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String("catalog.arg."+k, val))
		case int:
			attrs = append(attrs, attribute.Int("catalog.arg."+k, val))
		default:
			attrs = append(attrs, attribute.String("catalog.arg."+k, fmt.Sprint(val)))
		}
	}
	return attrs
}

type rawSeasonCatalog interface {
	EpisodesArg(ctx context.Context, series, season string) stream.Stream[media.TelevisionShow]
}

// EpisodesArg calls Episodes on c with an unparsed season. Catalogs that parse
// the season themselves, such as Instrumented, receive it as is; for others a
// malformed season becomes the terminal error of the returned stream.
func EpisodesArg(ctx context.Context, c Catalog, series, season string) stream.Stream[media.TelevisionShow] {
	if raw, ok := c.(rawSeasonCatalog); ok {
		return raw.EpisodesArg(ctx, series, season)
	}
	n, err := SeasonArg(season)
	if err != nil {
		return stream.Fail[media.TelevisionShow](err)
	}
	return c.Episodes(ctx, series, n)
}

// SeasonArg parses a season path or request parameter.
func SeasonArg(raw string) (int, error) {
	season, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &rterrors.MalformedRequestError{Param: "season", Value: raw, Err: err}
	}
	if season < 0 {
		return 0, &rterrors.MalformedRequestError{Param: "season", Value: raw}
	}
	return season, nil
}
