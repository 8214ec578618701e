package rpc_test

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/drblury/mediacatalog/internal/catalog"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/runtime/ids"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/runtime/logging/logtest"
	"github.com/drblury/mediacatalog/internal/sample/sampletest"
	"github.com/drblury/mediacatalog/internal/server/rpc"
	"github.com/drblury/mediacatalog/internal/wire"
	"github.com/drblury/mediacatalog/provider/memory"
	"github.com/drblury/mediacatalog/provider/providertest"
)

func serve(t *testing.T, c catalog.Catalog, logger logging.ServiceLogger) *grpc.ClientConn {
	t.Helper()
	srv, err := rpc.New(c, logger)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer(rpc.ServerOptions(logger)...)
	srv.Register(gs)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func drain[W any](t *testing.T, s grpc.ServerStreamingClient[W]) ([]*W, error) {
	t.Helper()
	var out []*W
	for {
		msg, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, msg)
	}
}

func TestNewValidates(t *testing.T) {
	_, err := rpc.New(nil, logging.NewDiscardLogger())
	assert.ErrorIs(t, err, rterrors.ErrCatalogRequired)
	_, err = rpc.New(memory.New(sampletest.Dataset()), nil)
	assert.ErrorIs(t, err, rterrors.ErrLoggerRequired)
}

func TestMoviesService(t *testing.T) {
	ds := sampletest.Dataset()
	conn := serve(t, memory.New(ds), logging.NewDiscardLogger())
	client := wire.NewMoviesClient(conn)
	ctx := context.Background()

	s, err := client.Get(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	msgs, err := drain(t, s)
	require.NoError(t, err)
	require.Len(t, msgs, sampletest.MovieCount)
	for i, msg := range msgs {
		got, err := wire.ToMovie(msg)
		require.NoError(t, err)
		assert.Equal(t, ds.Movies[i], got)
	}

	s, err = client.Search(ctx, &wire.SearchRequest{SearchText: "star trek"})
	require.NoError(t, err)
	msgs, err = drain(t, s)
	require.NoError(t, err)
	assert.Len(t, msgs, sampletest.StarTrekMatches)
}

func TestAudioService(t *testing.T) {
	conn := serve(t, memory.New(sampletest.Dataset()), logging.NewDiscardLogger())
	client := wire.NewAudioClient(conn)
	ctx := context.Background()

	s, err := client.Tracks(ctx, &wire.TracksRequest{AlbumTitle: "aja"})
	require.NoError(t, err)
	msgs, err := drain(t, s)
	require.NoError(t, err)
	assert.Len(t, msgs, sampletest.AjaTracks)

	s, err = client.Search(ctx, &wire.SearchRequest{SearchText: "pink floyd"})
	require.NoError(t, err)
	msgs, err = drain(t, s)
	require.NoError(t, err)
	assert.Len(t, msgs, sampletest.PinkFloydMatches)

	s, err = client.Get(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	msgs, err = drain(t, s)
	require.NoError(t, err)
	require.Len(t, msgs, sampletest.AudioCount)
	got, err := wire.ToAudio(msgs[0])
	require.NoError(t, err)
	assert.Equal(t, sampletest.Money(), got)
}

func TestTelevisionShowsService(t *testing.T) {
	conn := serve(t, memory.New(sampletest.Dataset()), logging.NewDiscardLogger())
	client := wire.NewTelevisionShowsClient(conn)
	ctx := context.Background()

	s, err := client.Series(ctx, &wire.SeriesRequest{SeriesTitle: "batman"})
	require.NoError(t, err)
	msgs, err := drain(t, s)
	require.NoError(t, err)
	assert.Len(t, msgs, sampletest.BatmanSeries, "series calls return the whole series")

	s, err = client.Episodes(ctx, &wire.EpisodesRequest{SeriesTitle: "Doc Martin", Season: 3})
	require.NoError(t, err)
	msgs, err = drain(t, s)
	require.NoError(t, err)
	assert.Len(t, msgs, sampletest.DocMartinSeason3)

	s, err = client.Search(ctx, &wire.SearchRequest{SearchText: "hawkeye"})
	require.NoError(t, err)
	msgs, err = drain(t, s)
	require.NoError(t, err)
	assert.Len(t, msgs, sampletest.HawkeyeMatches)

	s, err = client.Get(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	msgs, err = drain(t, s)
	require.NoError(t, err)
	assert.Len(t, msgs, sampletest.ShowCount)
}

func TestNegativeSeasonIsInvalidArgument(t *testing.T) {
	conn := serve(t, memory.New(sampletest.Dataset()), logging.NewDiscardLogger())
	s, err := wire.NewTelevisionShowsClient(conn).Episodes(context.Background(), &wire.EpisodesRequest{SeriesTitle: "Doc Martin", Season: -1})
	require.NoError(t, err)

	msgs, err := drain(t, s)
	assert.Empty(t, msgs)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), `invalid season "-1"`)
}

func TestNegativeSeasonIsObserved(t *testing.T) {
	metrics := catalog.NewMetrics(prometheus.NewRegistry())
	logs := logtest.New()
	inst, err := catalog.NewInstrumented(memory.New(sampletest.Dataset()), catalog.InstrumentOptions{
		Provider: "memory",
		Logger:   logs,
		Recorder: metrics,
	})
	require.NoError(t, err)
	conn := serve(t, inst, logging.NewDiscardLogger())

	s, err := wire.NewTelevisionShowsClient(conn).Episodes(context.Background(), &wire.EpisodesRequest{SeriesTitle: "Doc Martin", Season: -1})
	require.NoError(t, err)
	_, err = drain(t, s)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	stats := metrics.Stats("memory", catalog.OpEpisodes)
	require.NotNil(t, stats)
	assert.Equal(t, uint64(1), stats.Calls)
	assert.Equal(t, uint64(1), stats.Failures)
	assert.Len(t, logs.Level("error"), 1)
}

func TestPlainProtoClient(t *testing.T) {
	conn := serve(t, memory.New(sampletest.Dataset()), logging.NewDiscardLogger())
	ctx := context.Background()

	cs, err := conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, "/media.v1.Movies/Get")
	require.NoError(t, err)
	require.NoError(t, cs.SendMsg(&emptypb.Empty{}))
	require.NoError(t, cs.CloseSend())

	var n int
	for {
		var m wire.Movie
		err := cs.RecvMsg(&m)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		assert.NotEmpty(t, m.Title)
		n++
	}
	assert.Equal(t, sampletest.MovieCount, n)

	cs, err = conn.NewStream(ctx, &grpc.StreamDesc{ServerStreams: true}, "/media.v1.Movies/Search", grpc.CallContentSubtype("proto"))
	require.NoError(t, err)
	require.NoError(t, cs.SendMsg(&wire.SearchRequest{SearchText: "star trek"}))
	require.NoError(t, cs.CloseSend())
	n = 0
	for {
		var m wire.Movie
		err := cs.RecvMsg(&m)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, sampletest.StarTrekMatches, n)
}

func TestFailureEndsWithStatus(t *testing.T) {
	cause := rterrors.Unavailable("sqlite", errors.New("database is locked"))
	logs := logtest.New()
	conn := serve(t, &providertest.Failing{Data: sampletest.Dataset(), After: 2, Err: cause}, logs)

	s, err := wire.NewAudioClient(conn).Get(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	msgs, err := drain(t, s)
	assert.Len(t, msgs, 2)

	st := status.Convert(err)
	assert.Equal(t, codes.Unavailable, st.Code())
	assert.Equal(t, "database is locked", st.Message())

	errs := logs.Level("error")
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0].Err, cause)
}

func TestStreamIDMetadata(t *testing.T) {
	conn := serve(t, memory.New(sampletest.Dataset()), logging.NewDiscardLogger())
	client := wire.NewMoviesClient(conn)

	id := ids.NewStreamID()
	ctx := metadata.AppendToOutgoingContext(context.Background(), wire.StreamIDKey, id)
	s, err := client.Get(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	header, err := s.Header()
	require.NoError(t, err)
	assert.Equal(t, []string{id}, header.Get(wire.StreamIDKey))
	_, err = drain(t, s)
	require.NoError(t, err)

	s, err = client.Get(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	header, err = s.Header()
	require.NoError(t, err)
	require.Len(t, header.Get(wire.StreamIDKey), 1)
	_, err = ids.StartedAt(header.Get(wire.StreamIDKey)[0])
	assert.NoError(t, err)
	_, err = drain(t, s)
	require.NoError(t, err)
}

func TestRecovererTurnsPanicIntoInternal(t *testing.T) {
	logs := logtest.New()
	interceptor := rpc.StreamRecoverer(logs)
	err := interceptor(nil, nil, &grpc.StreamServerInfo{FullMethod: wire.MoviesGetMethod}, func(any, grpc.ServerStream) error {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
	require.Len(t, logs.Level("error"), 1)
	assert.Equal(t, wire.MoviesGetMethod, logs.Level("error")[0].Fields["method"])
}
