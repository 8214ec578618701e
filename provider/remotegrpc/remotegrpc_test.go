package remotegrpc_test

import (
	"context"
	"errors"
	"math"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/runtime/ids"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/sample/sampletest"
	"github.com/drblury/mediacatalog/internal/server/rpc"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/internal/wire"
	"github.com/drblury/mediacatalog/provider"
	"github.com/drblury/mediacatalog/provider/memory"
	"github.com/drblury/mediacatalog/provider/providertest"
	"github.com/drblury/mediacatalog/provider/remotegrpc"
)

func dialServer(t *testing.T, c catalog.Catalog, opts ...grpc.ServerOption) *remotegrpc.Catalog {
	t.Helper()
	srv, err := rpc.New(c, logging.NewDiscardLogger())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(opts...)
	srv.Register(gs)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := remotegrpc.Dial(remotegrpc.Config{
		Address: "passthrough:///bufnet",
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return remotegrpc.New(conn)
}

func TestRemoteMatchesLocalCatalog(t *testing.T) {
	ds := sampletest.Dataset()
	remote := dialServer(t, memory.New(ds))
	ctx := context.Background()

	movies, err := stream.Collect(remote.Movies(ctx))
	require.NoError(t, err)
	assert.Equal(t, ds.Movies, movies)

	audio, err := stream.Collect(remote.Audio(ctx))
	require.NoError(t, err)
	assert.Equal(t, ds.Audio, audio)

	shows, err := stream.Collect(remote.TelevisionShows(ctx))
	require.NoError(t, err)
	assert.Equal(t, ds.Shows, shows)

	trek, err := stream.Collect(remote.SearchMovies(ctx, "Star Trek"))
	require.NoError(t, err)
	assert.Len(t, trek, sampletest.StarTrekMatches)

	floyd, err := stream.Collect(remote.SearchAudio(ctx, "pink floyd"))
	require.NoError(t, err)
	assert.Len(t, floyd, sampletest.PinkFloydMatches)

	aja, err := stream.Collect(remote.AudioTracks(ctx, "Aja"))
	require.NoError(t, err)
	assert.Len(t, aja, sampletest.AjaTracks)

	batman, err := stream.Collect(remote.SearchTelevisionShows(ctx, "batman"))
	require.NoError(t, err)
	assert.Len(t, batman, sampletest.BatmanSearch)

	series, err := stream.Collect(remote.Series(ctx, "batman"))
	require.NoError(t, err)
	assert.Len(t, series, sampletest.BatmanSeries)

	episodes, err := stream.Collect(remote.Episodes(ctx, "doc martin", 3))
	require.NoError(t, err)
	assert.Len(t, episodes, sampletest.DocMartinSeason3)
}

func TestRemoteStatusBecomesTerminalError(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		kind  rterrors.Kind
	}{
		{"unavailable", rterrors.Unavailable("postgres", errors.New("dial tcp 10.1.1.1:5432: i/o timeout")), rterrors.KindUnavailable},
		{"malformed", &rterrors.MalformedRequestError{Param: "season", Value: "x"}, rterrors.KindMalformed},
		{"internal", errors.New("stream: producer panic: boom"), rterrors.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := dialServer(t, &providertest.Failing{Data: sampletest.Dataset(), After: 1, Err: tt.cause})

			shows, err := stream.Collect(remote.TelevisionShows(context.Background()))
			assert.Len(t, shows, 1)
			require.Error(t, err)
			assert.Equal(t, tt.cause.Error(), err.Error())
			assert.Equal(t, tt.kind, rterrors.Classify(err))
		})
	}
}

func TestRemoteRejectsSeasonOutOfRange(t *testing.T) {
	c := dialServer(t, memory.New(sampletest.Dataset()))

	season := math.MaxInt32
	season++
	_, err := stream.Collect(c.Episodes(context.Background(), "Doc Martin", season))
	require.Error(t, err)
	var malformed *rterrors.MalformedRequestError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "season", malformed.Param)
	assert.Equal(t, "2147483648", malformed.Value)

	shows, err := stream.Collect(c.Episodes(context.Background(), "Doc Martin", 3))
	require.NoError(t, err)
	assert.Len(t, shows, sampletest.DocMartinSeason3)
}

func TestRemoteUnreachable(t *testing.T) {
	lis := bufconn.Listen(1024)
	require.NoError(t, lis.Close())

	conn, err := remotegrpc.Dial(remotegrpc.Config{
		Address: "passthrough:///closed",
		Timeout: 200 * time.Millisecond,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	})
	require.NoError(t, err)
	defer conn.Close()

	_, err = stream.Collect(remotegrpc.New(conn).Movies(context.Background()))
	require.Error(t, err)
	assert.Equal(t, rterrors.KindUnavailable, rterrors.Classify(err))
}

type blockingMovies struct {
	catalog.Catalog
	cancelled atomic.Bool
}

func (b *blockingMovies) Movies(ctx context.Context) stream.Stream[media.Movie] {
	return stream.New(ctx, func(ctx context.Context, emit stream.Emit[media.Movie]) error {
		if err := emit(sampletest.StarTrekII()); err != nil {
			return err
		}
		<-ctx.Done()
		b.cancelled.Store(true)
		return ctx.Err()
	})
}

func TestRemoteCloseCancelsCall(t *testing.T) {
	inner := &blockingMovies{Catalog: memory.New(sampletest.Dataset())}
	remote := dialServer(t, inner)

	s := remote.Movies(context.Background())
	first, err := s.Recv()
	require.NoError(t, err)
	assert.Equal(t, sampletest.StarTrekII(), first)

	require.NoError(t, s.Close())
	assert.Eventually(t, inner.cancelled.Load, 2*time.Second, 10*time.Millisecond)
}

func TestRemoteCallerDeadline(t *testing.T) {
	inner := &blockingMovies{Catalog: memory.New(sampletest.Dataset())}
	remote := dialServer(t, inner)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := stream.Collect(remote.Movies(ctx))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, rterrors.KindDeadline, rterrors.Classify(err))
}

func TestRemoteForwardsStreamID(t *testing.T) {
	var seen atomic.Value
	capture := func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if md, ok := metadata.FromIncomingContext(ss.Context()); ok {
			seen.Store(md.Get(wire.StreamIDKey))
		}
		return handler(srv, ss)
	}
	remote := dialServer(t, memory.New(sampletest.Dataset()), grpc.StreamInterceptor(capture))

	id := ids.NewStreamID()
	_, err := stream.Collect(remote.Audio(catalog.WithStreamID(context.Background(), id)))
	require.NoError(t, err)
	assert.Equal(t, []string{id}, seen.Load())
}

func TestDialValidates(t *testing.T) {
	_, err := remotegrpc.Dial(remotegrpc.Config{})
	assert.Error(t, err)
}

func TestBuildRegistered(t *testing.T) {
	assert.True(t, provider.DefaultRegistry.Has(remotegrpc.ProviderName))
	assert.Equal(t, provider.RemoteGRPCCapabilities, remotegrpc.Capabilities())

	built, err := provider.Build(context.Background(), &providertest.Config{
		Backend:           remotegrpc.ProviderName,
		RemoteGRPCAddress: "localhost:1",
	}, watermill.NopLogger{})
	require.NoError(t, err)
	require.NoError(t, built.Close())

	_, err = provider.Build(context.Background(), &providertest.Config{Backend: remotegrpc.ProviderName}, watermill.NopLogger{})
	assert.Error(t, err)
}
