// Package rest serves a catalog over HTTP. Every operation is mounted twice:
// under the media root as a buffered JSON list, and under the stream segment as
// a Server-Sent Events stream.
package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/runtime/ids"
	"github.com/drblury/mediacatalog/internal/runtime/jsoncodec"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/runtime/resources"
	"github.com/drblury/mediacatalog/internal/routes"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/internal/transcode"
	"github.com/drblury/mediacatalog/provider"
)

// StreamIDHeader is echoed on every catalog response. A valid id supplied by
// the caller is reused so that chained services log under one id.
const StreamIDHeader = "X-Stream-ID"

// Options configures New.
type Options struct {
	Catalog catalog.Catalog
	Logger  logging.ServiceLogger
	Paths   routes.Paths
	// Capabilities of the backing provider, reported by /health.
	Capabilities provider.Capabilities
	// Metrics backs /operations with call tallies. Optional.
	Metrics *catalog.Metrics
	// AllowedOrigins enables CORS for browser clients. Empty disables it.
	AllowedOrigins []string
	// Resources adds a process usage sample to /health. Optional.
	Resources *resources.Tracker
}

// Server is the HTTP front of a catalog.
type Server struct {
	catalog catalog.Catalog
	logger  logging.ServiceLogger
	paths   routes.Paths
	caps    provider.Capabilities
	metrics *catalog.Metrics
	usage   *resources.Tracker
	router  *chi.Mux
}

// New builds the router.
func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, rterrors.ErrCatalogRequired
	}
	if opts.Logger == nil {
		return nil, rterrors.ErrLoggerRequired
	}

	s := &Server{
		catalog: opts.Catalog,
		logger:  opts.Logger,
		paths:   opts.Paths.WithDefaults(),
		caps:    opts.Capabilities,
		metrics: opts.Metrics,
		usage:   opts.Resources,
		router:  chi.NewRouter(),
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", StreamIDHeader},
			ExposedHeaders: []string{StreamIDHeader},
			MaxAge:         300,
		}))
	}

	for _, op := range catalog.Operations() {
		for _, streaming := range []bool{false, true} {
			r.Get(s.paths.Base(streaming)+s.paths.Pattern(op), s.handler(op, streaming))
		}
	}
	r.Get("/health", s.handleHealth)
	r.Get("/operations", s.handleOperations)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the chi router so callers can mount extra routes.
func (s *Server) Router() chi.Router { return s.router }

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		defer func() {
			s.logger.Debug("Served request", logging.LogFields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": middleware.GetReqID(r.Context()),
				"status":     ww.Status(),
				"size":       ww.BytesWritten(),
				"took":       time.Since(started).String(),
			})
		}()
		next.ServeHTTP(ww, r)
	})
}

// streamContext assigns the stream id for one catalog call and echoes it.
func streamContext(w http.ResponseWriter, r *http.Request) context.Context {
	id := r.Header.Get(StreamIDHeader)
	if _, err := ids.StartedAt(id); err != nil {
		id = ids.NewStreamID()
	}
	w.Header().Set(StreamIDHeader, id)
	return catalog.WithStreamID(r.Context(), id)
}

// param returns the decoded value of a path parameter. chi routes on the
// escaped path only when the request has a RawPath; otherwise the parameter is
// already decoded and must not be unescaped again.
func param(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw, nil
	}
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", &rterrors.MalformedRequestError{Param: name, Value: raw, Err: err}
	}
	return value, nil
}

type call[T media.Entry] func(ctx context.Context, r *http.Request) stream.Stream[T]

// withParam resolves one path parameter before calling fn. A malformed value
// becomes the terminal error of the stream.
func withParam[T media.Entry](name string, fn func(ctx context.Context, value string) stream.Stream[T]) call[T] {
	return func(ctx context.Context, r *http.Request) stream.Stream[T] {
		value, err := param(r, name)
		if err != nil {
			return stream.Fail[T](err)
		}
		return fn(ctx, value)
	}
}

func (s *Server) episodes(ctx context.Context, r *http.Request) stream.Stream[media.TelevisionShow] {
	series, err := param(r, routes.ParamSeries)
	if err != nil {
		return stream.Fail[media.TelevisionShow](err)
	}
	season, err := param(r, routes.ParamSeason)
	if err != nil {
		return stream.Fail[media.TelevisionShow](err)
	}
	return catalog.EpisodesArg(ctx, s.catalog, series, season)
}

func (s *Server) handler(op catalog.Operation, streaming bool) http.HandlerFunc {
	c := s.catalog
	switch op {
	case catalog.OpMovies:
		return serve(s, op, streaming, func(ctx context.Context, _ *http.Request) stream.Stream[media.Movie] {
			return c.Movies(ctx)
		})
	case catalog.OpSearchMovies:
		return serve(s, op, streaming, withParam(routes.ParamText, c.SearchMovies))
	case catalog.OpAudio:
		return serve(s, op, streaming, func(ctx context.Context, _ *http.Request) stream.Stream[media.Audio] {
			return c.Audio(ctx)
		})
	case catalog.OpSearchAudio:
		return serve(s, op, streaming, withParam(routes.ParamText, c.SearchAudio))
	case catalog.OpAudioTracks:
		return serve(s, op, streaming, withParam(routes.ParamAlbum, c.AudioTracks))
	case catalog.OpTelevisionShows:
		return serve(s, op, streaming, func(ctx context.Context, _ *http.Request) stream.Stream[media.TelevisionShow] {
			return c.TelevisionShows(ctx)
		})
	case catalog.OpSearchTelevisionShows:
		return serve(s, op, streaming, withParam(routes.ParamText, c.SearchTelevisionShows))
	case catalog.OpEpisodes:
		return serve(s, op, streaming, s.episodes)
	case catalog.OpSeries:
		return serve(s, op, streaming, withParam(routes.ParamSeries, c.Series))
	}
	return http.NotFound
}

func serve[T media.Entry](s *Server, op catalog.Operation, streaming bool, fn call[T]) http.HandlerFunc {
	if streaming {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx := streamContext(w, r)
			items := fn(ctx, r)
			sink := transcode.NewEventWriter(w)
			if err := transcode.StreamEvents(items, sink, op.Kind(), s.logger); err != nil {
				s.logger.Debug("Event stream ended early", logging.LogFields{
					"operation": op.String(),
					"error":     err.Error(),
				})
			}
		}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := streamContext(w, r)
		resp := transcode.Buffer(fn(ctx, r))
		if resp.Err != nil {
			s.logger.Error("Request failed", resp.Err, logging.LogFields{"operation": op.String()})
		}
		if err := resp.Write(w); err != nil {
			s.logger.Debug("Failed to write response", logging.LogFields{
				"operation": op.String(),
				"error":     err.Error(),
			})
		}
	}
}

// Health is the body of GET /health.
type Health struct {
	Status    string                `json:"status"`
	Provider  provider.Capabilities `json:"provider"`
	Resources *resources.Usage      `json:"resources,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := Health{Status: "ok", Provider: s.caps}
	if s.usage != nil {
		usage := s.usage.Snapshot()
		health.Resources = &usage
	}
	s.writeJSON(w, health)
}

// OperationInfo describes one mounted operation for GET /operations.
type OperationInfo struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Kind        media.Kind              `json:"kind"`
	Path        string                  `json:"path"`
	StreamPath  string                  `json:"stream_path"`
	Stats       *catalog.OperationStats `json:"stats,omitempty"`
}

func (s *Server) handleOperations(w http.ResponseWriter, _ *http.Request) {
	ops := catalog.Operations()
	out := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		info := OperationInfo{
			Name:        op.String(),
			Description: op.Description(),
			Kind:        op.Kind(),
			Path:        s.paths.Base(false) + s.paths.Pattern(op),
			StreamPath:  s.paths.Base(true) + s.paths.Pattern(op),
		}
		if s.metrics != nil {
			info.Stats = s.metrics.Stats(s.caps.Name, op)
		}
		out = append(out, info)
	}
	s.writeJSON(w, out)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := jsoncodec.Encode(w, v); err != nil {
		s.logger.Error("Failed to encode response", err, nil)
	}
}
