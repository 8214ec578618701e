package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	MoviesServiceName          = "media.v1.Movies"
	AudioServiceName           = "media.v1.Audio"
	TelevisionShowsServiceName = "media.v1.TelevisionShows"
)

// StreamIDKey is the metadata key carrying the stream id of a call, sent by
// clients and echoed by the server as a response header.
const StreamIDKey = "x-stream-id"

// Full method names, as seen by interceptors.
const (
	MoviesGetMethod              = "/" + MoviesServiceName + "/Get"
	MoviesSearchMethod           = "/" + MoviesServiceName + "/Search"
	AudioGetMethod               = "/" + AudioServiceName + "/Get"
	AudioSearchMethod            = "/" + AudioServiceName + "/Search"
	AudioTracksMethod            = "/" + AudioServiceName + "/Tracks"
	TelevisionShowsGetMethod     = "/" + TelevisionShowsServiceName + "/Get"
	TelevisionShowsSearchMethod  = "/" + TelevisionShowsServiceName + "/Search"
	TelevisionShowsEpisodeMethod = "/" + TelevisionShowsServiceName + "/Episodes"
	TelevisionShowsSeriesMethod  = "/" + TelevisionShowsServiceName + "/Series"
)

// streamHandler adapts a typed server-streaming method to grpc.StreamHandler.
func streamHandler[S, Req, Resp any](call func(srv S, req *Req, stream grpc.ServerStreamingServer[Resp]) error) grpc.StreamHandler {
	return func(srv any, stream grpc.ServerStream) error {
		req := new(Req)
		if err := stream.RecvMsg(req); err != nil {
			return err
		}
		return call(srv.(S), req, &grpc.GenericServerStream[Req, Resp]{ServerStream: stream})
	}
}

func serverStream(name string, handler grpc.StreamHandler) grpc.StreamDesc {
	return grpc.StreamDesc{StreamName: name, Handler: handler, ServerStreams: true}
}

// openStream starts a server-streaming call and sends its single request.
func openStream[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, desc *grpc.StreamDesc, method string, in *Req, opts []grpc.CallOption) (grpc.ServerStreamingClient[Resp], error) {
	stream, err := cc.NewStream(ctx, desc, method, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[Req, Resp]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// MoviesServer is the server API for media.v1.Movies.
type MoviesServer interface {
	Get(*emptypb.Empty, grpc.ServerStreamingServer[Movie]) error
	Search(*SearchRequest, grpc.ServerStreamingServer[Movie]) error
}

// MoviesServiceDesc describes media.v1.Movies.
var MoviesServiceDesc = grpc.ServiceDesc{
	ServiceName: MoviesServiceName,
	HandlerType: (*MoviesServer)(nil),
	Streams: []grpc.StreamDesc{
		serverStream("Get", streamHandler(MoviesServer.Get)),
		serverStream("Search", streamHandler(MoviesServer.Search)),
	},
	Metadata: "media/v1/media.proto",
}

// RegisterMoviesServer registers srv with s.
func RegisterMoviesServer(s grpc.ServiceRegistrar, srv MoviesServer) {
	s.RegisterService(&MoviesServiceDesc, srv)
}

// MoviesClient is the client API for media.v1.Movies.
type MoviesClient interface {
	Get(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Movie], error)
	Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Movie], error)
}

type moviesClient struct {
	cc grpc.ClientConnInterface
}

// NewMoviesClient returns a Movies client.
func NewMoviesClient(cc grpc.ClientConnInterface) MoviesClient {
	return &moviesClient{cc: cc}
}

func (c *moviesClient) Get(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Movie], error) {
	return openStream[emptypb.Empty, Movie](ctx, c.cc, &MoviesServiceDesc.Streams[0], MoviesGetMethod, in, opts)
}

func (c *moviesClient) Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Movie], error) {
	return openStream[SearchRequest, Movie](ctx, c.cc, &MoviesServiceDesc.Streams[1], MoviesSearchMethod, in, opts)
}

// AudioServer is the server API for media.v1.Audio.
type AudioServer interface {
	Get(*emptypb.Empty, grpc.ServerStreamingServer[Audio]) error
	Search(*SearchRequest, grpc.ServerStreamingServer[Audio]) error
	Tracks(*TracksRequest, grpc.ServerStreamingServer[Audio]) error
}

// AudioServiceDesc describes media.v1.Audio.
var AudioServiceDesc = grpc.ServiceDesc{
	ServiceName: AudioServiceName,
	HandlerType: (*AudioServer)(nil),
	Streams: []grpc.StreamDesc{
		serverStream("Get", streamHandler(AudioServer.Get)),
		serverStream("Search", streamHandler(AudioServer.Search)),
		serverStream("Tracks", streamHandler(AudioServer.Tracks)),
	},
	Metadata: "media/v1/media.proto",
}

// RegisterAudioServer registers srv with s.
func RegisterAudioServer(s grpc.ServiceRegistrar, srv AudioServer) {
	s.RegisterService(&AudioServiceDesc, srv)
}

// AudioClient is the client API for media.v1.Audio.
type AudioClient interface {
	Get(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Audio], error)
	Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Audio], error)
	Tracks(ctx context.Context, in *TracksRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Audio], error)
}

type audioClient struct {
	cc grpc.ClientConnInterface
}

// NewAudioClient returns an Audio client.
func NewAudioClient(cc grpc.ClientConnInterface) AudioClient {
	return &audioClient{cc: cc}
}

func (c *audioClient) Get(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Audio], error) {
	return openStream[emptypb.Empty, Audio](ctx, c.cc, &AudioServiceDesc.Streams[0], AudioGetMethod, in, opts)
}

func (c *audioClient) Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Audio], error) {
	return openStream[SearchRequest, Audio](ctx, c.cc, &AudioServiceDesc.Streams[1], AudioSearchMethod, in, opts)
}

func (c *audioClient) Tracks(ctx context.Context, in *TracksRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Audio], error) {
	return openStream[TracksRequest, Audio](ctx, c.cc, &AudioServiceDesc.Streams[2], AudioTracksMethod, in, opts)
}

// TelevisionShowsServer is the server API for media.v1.TelevisionShows.
type TelevisionShowsServer interface {
	Get(*emptypb.Empty, grpc.ServerStreamingServer[TelevisionShow]) error
	Search(*SearchRequest, grpc.ServerStreamingServer[TelevisionShow]) error
	Episodes(*EpisodesRequest, grpc.ServerStreamingServer[TelevisionShow]) error
	Series(*SeriesRequest, grpc.ServerStreamingServer[TelevisionShow]) error
}

// TelevisionShowsServiceDesc describes media.v1.TelevisionShows.
var TelevisionShowsServiceDesc = grpc.ServiceDesc{
	ServiceName: TelevisionShowsServiceName,
	HandlerType: (*TelevisionShowsServer)(nil),
	Streams: []grpc.StreamDesc{
		serverStream("Get", streamHandler(TelevisionShowsServer.Get)),
		serverStream("Search", streamHandler(TelevisionShowsServer.Search)),
		serverStream("Episodes", streamHandler(TelevisionShowsServer.Episodes)),
		serverStream("Series", streamHandler(TelevisionShowsServer.Series)),
	},
	Metadata: "media/v1/media.proto",
}

// RegisterTelevisionShowsServer registers srv with s.
func RegisterTelevisionShowsServer(s grpc.ServiceRegistrar, srv TelevisionShowsServer) {
	s.RegisterService(&TelevisionShowsServiceDesc, srv)
}

// TelevisionShowsClient is the client API for media.v1.TelevisionShows.
type TelevisionShowsClient interface {
	Get(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TelevisionShow], error)
	Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TelevisionShow], error)
	Episodes(ctx context.Context, in *EpisodesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TelevisionShow], error)
	Series(ctx context.Context, in *SeriesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TelevisionShow], error)
}

type televisionShowsClient struct {
	cc grpc.ClientConnInterface
}

// NewTelevisionShowsClient returns a TelevisionShows client.
func NewTelevisionShowsClient(cc grpc.ClientConnInterface) TelevisionShowsClient {
	return &televisionShowsClient{cc: cc}
}

func (c *televisionShowsClient) Get(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TelevisionShow], error) {
	return openStream[emptypb.Empty, TelevisionShow](ctx, c.cc, &TelevisionShowsServiceDesc.Streams[0], TelevisionShowsGetMethod, in, opts)
}

func (c *televisionShowsClient) Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TelevisionShow], error) {
	return openStream[SearchRequest, TelevisionShow](ctx, c.cc, &TelevisionShowsServiceDesc.Streams[1], TelevisionShowsSearchMethod, in, opts)
}

func (c *televisionShowsClient) Episodes(ctx context.Context, in *EpisodesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TelevisionShow], error) {
	return openStream[EpisodesRequest, TelevisionShow](ctx, c.cc, &TelevisionShowsServiceDesc.Streams[2], TelevisionShowsEpisodeMethod, in, opts)
}

func (c *televisionShowsClient) Series(ctx context.Context, in *SeriesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[TelevisionShow], error) {
	return openStream[SeriesRequest, TelevisionShow](ctx, c.cc, &TelevisionShowsServiceDesc.Streams[3], TelevisionShowsSeriesMethod, in, opts)
}
