// Package remotegrpc provides a catalog that consumes the media.v1 gRPC
// services of another catalog service. Status errors ending a remote stream
// become terminal errors that classify the same way locally.
package remotegrpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/internal/transcode"
	"github.com/drblury/mediacatalog/internal/wire"
	"github.com/drblury/mediacatalog/provider"
)

// ProviderName is the name used to register this provider.
const ProviderName = "grpc"

// DefaultTimeout bounds establishing a connection.
const DefaultTimeout = 10 * time.Second

func init() {
	provider.RegisterWithCapabilities(ProviderName, Build, provider.RemoteGRPCCapabilities)
}

// Build dials cfg.GetRemoteGRPCAddress. The connection is established lazily,
// so an unreachable remote surfaces as the terminal error of the first stream.
func Build(ctx context.Context, cfg provider.Config, logger watermill.LoggerAdapter) (provider.Provider, error) {
	conn, err := Dial(Config{
		Address: cfg.GetRemoteGRPCAddress(),
		Timeout: cfg.GetRemoteTimeout(),
	})
	if err != nil {
		return provider.Provider{}, err
	}
	logger.Info("Remote gRPC catalog configured", watermill.LogFields{"address": conn.Target()})

	c := New(conn, provider.StreamOptions(cfg, stream.NewPool(cfg.GetProducerConcurrency()))...)
	return provider.Provider{Catalog: c, Closer: conn}, nil
}

// Capabilities returns the capabilities of this provider.
func Capabilities() provider.Capabilities {
	return provider.RemoteGRPCCapabilities
}

// Config holds remote gRPC settings.
type Config struct {
	// Address is a gRPC target such as catalog:9090 or dns:///catalog:9090.
	Address string
	// Timeout bounds each connection attempt.
	Timeout time.Duration
	// KeepaliveTime and KeepaliveTimeout configure client pings.
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
	// DialOptions are appended after the defaults.
	DialOptions []grpc.DialOption
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.KeepaliveTime <= 0 {
		c.KeepaliveTime = 30 * time.Second
	}
	if c.KeepaliveTimeout <= 0 {
		c.KeepaliveTimeout = 10 * time.Second
	}
	return c
}

// Dial creates the client connection.
func Dial(cfg Config) (*grpc.ClientConn, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, fmt.Errorf("remote gRPC address is required")
	}
	cfg = cfg.withDefaults()

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.KeepaliveTime,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff:           backoff.DefaultConfig,
			MinConnectTimeout: cfg.Timeout,
		}),
	}
	opts = append(opts, cfg.DialOptions...)

	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client for %s: %w", cfg.Address, err)
	}
	return conn, nil
}

// Catalog is a catalog.Catalog backed by the remote media.v1 services.
type Catalog struct {
	movies wire.MoviesClient
	audio  wire.AudioClient
	shows  wire.TelevisionShowsClient
	opts   []stream.Option
}

var _ catalog.Catalog = (*Catalog)(nil)

var errSeasonRange = errors.New("out of range for the wire format")

// New returns a catalog calling through cc.
func New(cc grpc.ClientConnInterface, opts ...stream.Option) *Catalog {
	return &Catalog{
		movies: wire.NewMoviesClient(cc),
		audio:  wire.NewAudioClient(cc),
		shows:  wire.NewTelevisionShowsClient(cc),
		opts:   opts,
	}
}

type opener[W any] func(ctx context.Context) (grpc.ServerStreamingClient[W], error)

func receive[W, T any](c *Catalog, ctx context.Context, open opener[W], convert func(*W) (T, error)) stream.Stream[T] {
	return stream.New(ctx, func(ctx context.Context, emit stream.Emit[T]) error {
		if id, ok := catalog.StreamID(ctx); ok {
			ctx = metadata.AppendToOutgoingContext(ctx, wire.StreamIDKey, id)
		}
		remote, err := open(ctx)
		if err != nil {
			return terminal(ctx, err)
		}
		for {
			msg, err := remote.Recv()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return terminal(ctx, err)
			}
			item, err := convert(msg)
			if err != nil {
				return fmt.Errorf("decoding %T: %w", msg, err)
			}
			if err := emit(item); err != nil {
				return err
			}
		}
	}, c.opts...)
}

// terminal maps a status error to its local form. A cancellation caused by our
// own context reports that context's error.
func terminal(ctx context.Context, err error) error {
	if ctx.Err() != nil && status.Code(err) == codes.Canceled {
		return ctx.Err()
	}
	return transcode.FromStatus(ProviderName, err)
}

func (c *Catalog) Movies(ctx context.Context) stream.Stream[media.Movie] {
	return receive(c, ctx, func(ctx context.Context) (grpc.ServerStreamingClient[wire.Movie], error) {
		return c.movies.Get(ctx, &emptypb.Empty{})
	}, wire.ToMovie)
}

func (c *Catalog) SearchMovies(ctx context.Context, text string) stream.Stream[media.Movie] {
	return receive(c, ctx, func(ctx context.Context) (grpc.ServerStreamingClient[wire.Movie], error) {
		return c.movies.Search(ctx, &wire.SearchRequest{SearchText: text})
	}, wire.ToMovie)
}

func (c *Catalog) Audio(ctx context.Context) stream.Stream[media.Audio] {
	return receive(c, ctx, func(ctx context.Context) (grpc.ServerStreamingClient[wire.Audio], error) {
		return c.audio.Get(ctx, &emptypb.Empty{})
	}, wire.ToAudio)
}

func (c *Catalog) SearchAudio(ctx context.Context, text string) stream.Stream[media.Audio] {
	return receive(c, ctx, func(ctx context.Context) (grpc.ServerStreamingClient[wire.Audio], error) {
		return c.audio.Search(ctx, &wire.SearchRequest{SearchText: text})
	}, wire.ToAudio)
}

func (c *Catalog) AudioTracks(ctx context.Context, album string) stream.Stream[media.Audio] {
	return receive(c, ctx, func(ctx context.Context) (grpc.ServerStreamingClient[wire.Audio], error) {
		return c.audio.Tracks(ctx, &wire.TracksRequest{AlbumTitle: album})
	}, wire.ToAudio)
}

func (c *Catalog) TelevisionShows(ctx context.Context) stream.Stream[media.TelevisionShow] {
	return receive(c, ctx, func(ctx context.Context) (grpc.ServerStreamingClient[wire.TelevisionShow], error) {
		return c.shows.Get(ctx, &emptypb.Empty{})
	}, wire.ToTelevisionShow)
}

func (c *Catalog) SearchTelevisionShows(ctx context.Context, text string) stream.Stream[media.TelevisionShow] {
	return receive(c, ctx, func(ctx context.Context) (grpc.ServerStreamingClient[wire.TelevisionShow], error) {
		return c.shows.Search(ctx, &wire.SearchRequest{SearchText: text})
	}, wire.ToTelevisionShow)
}

func (c *Catalog) Episodes(ctx context.Context, series string, season int) stream.Stream[media.TelevisionShow] {
	if season != int(int32(season)) {
		return stream.Fail[media.TelevisionShow](&rterrors.MalformedRequestError{
			Param: "season",
			Value: strconv.Itoa(season),
			Err:   errSeasonRange,
		})
	}
	return receive(c, ctx, func(ctx context.Context) (grpc.ServerStreamingClient[wire.TelevisionShow], error) {
		return c.shows.Episodes(ctx, &wire.EpisodesRequest{SeriesTitle: series, Season: int32(season)})
	}, wire.ToTelevisionShow)
}

func (c *Catalog) Series(ctx context.Context, series string) stream.Stream[media.TelevisionShow] {
	return receive(c, ctx, func(ctx context.Context) (grpc.ServerStreamingClient[wire.TelevisionShow], error) {
		return c.shows.Series(ctx, &wire.SeriesRequest{SeriesTitle: series})
	}, wire.ToTelevisionShow)
}
