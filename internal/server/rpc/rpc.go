// Package rpc serves a catalog as the media.v1 Movies, Audio and
// TelevisionShows gRPC services. Every call is server-streaming: one message
// per item, then either a normal end or a status error.
package rpc

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/runtime/ids"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/internal/transcode"
	"github.com/drblury/mediacatalog/internal/wire"
)

// Server implements the three media services over one catalog.
type Server struct {
	catalog catalog.Catalog
	logger  logging.ServiceLogger
}

// New validates the collaborators.
func New(c catalog.Catalog, logger logging.ServiceLogger) (*Server, error) {
	if c == nil {
		return nil, rterrors.ErrCatalogRequired
	}
	if logger == nil {
		return nil, rterrors.ErrLoggerRequired
	}
	return &Server{catalog: c, logger: logger}, nil
}

// Register adds the three services to r.
func (s *Server) Register(r grpc.ServiceRegistrar) {
	wire.RegisterMoviesServer(r, movies{s})
	wire.RegisterAudioServer(r, audio{s})
	wire.RegisterTelevisionShowsServer(r, shows{s})
}

// ServerOptions are the options the service starts its gRPC server with.
func ServerOptions(logger logging.ServiceLogger) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainStreamInterceptor(StreamLogger(logger), StreamRecoverer(logger)),
	}
}

// StreamLogger logs every finished stream at debug level.
func StreamLogger(logger logging.ServiceLogger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		started := time.Now()
		err := handler(srv, ss)
		logger.Debug("Served RPC", logging.LogFields{
			"method": info.FullMethod,
			"code":   status.Code(err).String(),
			"took":   time.Since(started).String(),
		})
		return err
	}
}

// StreamRecoverer turns a panicking handler into an Internal status.
func StreamRecoverer(logger logging.ServiceLogger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("RPC panic", fmt.Errorf("%v", r), logging.LogFields{
					"method": info.FullMethod,
					"stack":  string(debug.Stack()),
				})
				err = status.Error(codes.Internal, fmt.Sprintf("panic: %v", r))
			}
		}()
		return handler(srv, ss)
	}
}

// callContext resolves the stream id for one call and sends it back as a
// response header.
func callContext(out grpc.ServerStream) context.Context {
	ctx := out.Context()
	var id string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(wire.StreamIDKey); len(values) > 0 {
			id = values[0]
		}
	}
	if _, err := ids.StartedAt(id); err != nil {
		id = ids.NewStreamID()
	}
	_ = out.SetHeader(metadata.Pairs(wire.StreamIDKey, id))
	return catalog.WithStreamID(ctx, id)
}

func send[T media.Entry, W any](s *Server, out grpc.ServerStreamingServer[W], convert func(T) *W, call func(ctx context.Context) stream.Stream[T]) error {
	return transcode.SendAll(call(callContext(out)), out, convert, s.logger)
}

type movies struct{ *Server }

func (m movies) Get(_ *emptypb.Empty, out grpc.ServerStreamingServer[wire.Movie]) error {
	return send(m.Server, out, wire.FromMovie, m.catalog.Movies)
}

func (m movies) Search(req *wire.SearchRequest, out grpc.ServerStreamingServer[wire.Movie]) error {
	return send(m.Server, out, wire.FromMovie, func(ctx context.Context) stream.Stream[media.Movie] {
		return m.catalog.SearchMovies(ctx, req.SearchText)
	})
}

type audio struct{ *Server }

func (a audio) Get(_ *emptypb.Empty, out grpc.ServerStreamingServer[wire.Audio]) error {
	return send(a.Server, out, wire.FromAudio, a.catalog.Audio)
}

func (a audio) Search(req *wire.SearchRequest, out grpc.ServerStreamingServer[wire.Audio]) error {
	return send(a.Server, out, wire.FromAudio, func(ctx context.Context) stream.Stream[media.Audio] {
		return a.catalog.SearchAudio(ctx, req.SearchText)
	})
}

func (a audio) Tracks(req *wire.TracksRequest, out grpc.ServerStreamingServer[wire.Audio]) error {
	return send(a.Server, out, wire.FromAudio, func(ctx context.Context) stream.Stream[media.Audio] {
		return a.catalog.AudioTracks(ctx, req.AlbumTitle)
	})
}

type shows struct{ *Server }

func (t shows) Get(_ *emptypb.Empty, out grpc.ServerStreamingServer[wire.TelevisionShow]) error {
	return send(t.Server, out, wire.FromTelevisionShow, t.catalog.TelevisionShows)
}

func (t shows) Search(req *wire.SearchRequest, out grpc.ServerStreamingServer[wire.TelevisionShow]) error {
	return send(t.Server, out, wire.FromTelevisionShow, func(ctx context.Context) stream.Stream[media.TelevisionShow] {
		return t.catalog.SearchTelevisionShows(ctx, req.SearchText)
	})
}

func (t shows) Episodes(req *wire.EpisodesRequest, out grpc.ServerStreamingServer[wire.TelevisionShow]) error {
	return send(t.Server, out, wire.FromTelevisionShow, func(ctx context.Context) stream.Stream[media.TelevisionShow] {
		return catalog.EpisodesArg(ctx, t.catalog, req.SeriesTitle, strconv.Itoa(int(req.Season)))
	})
}

func (t shows) Series(req *wire.SeriesRequest, out grpc.ServerStreamingServer[wire.TelevisionShow]) error {
	return send(t.Server, out, wire.FromTelevisionShow, func(ctx context.Context) stream.Stream[media.TelevisionShow] {
		return t.catalog.Series(ctx, req.SeriesTitle)
	})
}
