package mediacatalog

import (
	"context"
	"time"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	runtimepkg "github.com/drblury/mediacatalog/internal/runtime"
	configpkg "github.com/drblury/mediacatalog/internal/runtime/config"
	errspkg "github.com/drblury/mediacatalog/internal/runtime/errors"
	idspkg "github.com/drblury/mediacatalog/internal/runtime/ids"
	jsoncodec "github.com/drblury/mediacatalog/internal/runtime/jsoncodec"
	loggingpkg "github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/sample"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/provider"
	_ "github.com/drblury/mediacatalog/provider/providers"
)

type (
	Config              = configpkg.Config
	Service             = runtimepkg.Service
	ServiceDependencies = runtimepkg.ServiceDependencies

	// Catalog contract
	Catalog          = catalog.Catalog
	Operation        = catalog.Operation
	CallHooks        = catalog.CallHooks
	CallContext      = catalog.CallContext
	Outcome          = catalog.Outcome
	Metrics          = catalog.Metrics
	OperationStats   = catalog.OperationStats
	MetricsSnapshot  = catalog.MetricsSnapshot
	Instrumented     = catalog.Instrumented
	InstrumentOption = catalog.InstrumentOptions

	// Media model
	Item           = media.Item
	Movie          = media.Movie
	Audio          = media.Audio
	TelevisionShow = media.TelevisionShow
	Kind           = media.Kind
	Date           = media.Date
	Duration       = media.Duration
	Dataset        = sample.Dataset

	// Providers
	Provider             = provider.Provider
	ProviderBuilder      = provider.Builder
	ProviderConfig       = provider.Config
	ProviderRegistry     = provider.Registry
	ProviderCapabilities = provider.Capabilities

	LogFields     = loggingpkg.LogFields
	ServiceLogger = loggingpkg.ServiceLogger

	ConfigValidationError    = errspkg.ConfigValidationError
	ProviderUnavailableError = errspkg.ProviderUnavailableError
	MalformedRequestError    = errspkg.MalformedRequestError
	RemoteStreamError        = errspkg.RemoteStreamError
	ErrorKind                = errspkg.Kind
)

// Stream is a lazy, cancellable sequence of catalog items.
type Stream[T any] = stream.Stream[T]

var (
	NewService     = runtimepkg.NewService
	TryNewService  = runtimepkg.TryNewService
	DefaultConfig  = configpkg.Default
	LoadConfig     = configpkg.LoadFile
	ValidateConfig = configpkg.ValidateConfig

	Operations       = catalog.Operations
	NewInstrumented  = catalog.NewInstrumented
	NewMetrics       = catalog.NewMetrics
	LoggingHooks     = catalog.LoggingHooks
	RecorderHooks    = catalog.RecorderHooks
	OutcomeOf        = catalog.OutcomeOf
	WithStreamID     = catalog.WithStreamID
	StreamIDFrom     = catalog.StreamID
	LoadDataset      = sample.LoadDir
	LoadDatasetFS    = sample.LoadFS
	ParseDate        = media.ParseDate
	HMS              = media.HMS
	ClassifyError    = errspkg.Classify
	UnavailableError = errspkg.Unavailable

	// Provider registry. Importing this package registers every built-in
	// provider (memory, postgres, sqlite, sse, grpc) with DefaultProviderRegistry.
	DefaultProviderRegistry = provider.DefaultRegistry
	NewProviderRegistry     = provider.NewRegistry
	RegisterProvider        = provider.Register
	BuildProvider           = provider.Build

	Marshal   = jsoncodec.Marshal
	Unmarshal = jsoncodec.Unmarshal
	Encode    = jsoncodec.Encode
	Decode    = jsoncodec.Decode

	ErrCatalogRequired  = errspkg.ErrCatalogRequired
	ErrLoggerRequired   = errspkg.ErrLoggerRequired
	ErrConfigRequired   = errspkg.ErrConfigRequired
	ErrDatasetRequired  = errspkg.ErrDatasetRequired
	ErrUnknownProvider  = errspkg.ErrUnknownProvider
	ErrProviderRequired = errspkg.ErrProviderRequired
	ErrStreamTruncated  = errspkg.ErrStreamTruncated
	ErrStreamClosed     = stream.ErrClosed

	NewLogger            = loggingpkg.New
	NewSlogServiceLogger = loggingpkg.NewSlogServiceLogger
	NewDiscardLogger     = loggingpkg.NewDiscardLogger

	NewStreamID = idspkg.NewStreamID
)

// Media kinds, also used as SSE event names.
const (
	KindMovie          = media.KindMovie
	KindAudio          = media.KindAudio
	KindTelevisionShow = media.KindTelevisionShow
)

// Catalog operations.
const (
	OpMovies                = catalog.OpMovies
	OpSearchMovies          = catalog.OpSearchMovies
	OpAudio                 = catalog.OpAudio
	OpSearchAudio           = catalog.OpSearchAudio
	OpAudioTracks           = catalog.OpAudioTracks
	OpTelevisionShows       = catalog.OpTelevisionShows
	OpSearchTelevisionShows = catalog.OpSearchTelevisionShows
	OpEpisodes              = catalog.OpEpisodes
	OpSeries                = catalog.OpSeries
)

// Error kinds reported by ClassifyError.
const (
	ErrorKindInternal    = errspkg.KindInternal
	ErrorKindUnavailable = errspkg.KindUnavailable
	ErrorKindMalformed   = errspkg.KindMalformed
	ErrorKindCanceled    = errspkg.KindCanceled
	ErrorKindDeadline    = errspkg.KindDeadline
)

// DefaultCallTimeout bounds one catalog call unless Config.CallTimeout says otherwise.
const DefaultCallTimeout = catalog.DefaultCallTimeout

func Collect[T any](s Stream[T]) ([]T, error) {
	return stream.Collect(s)
}

func Each[T any](s Stream[T], fn func(T) error) error {
	return stream.Each(s, fn)
}

func FromSlice[T any](items []T) Stream[T] {
	return stream.FromSlice(items)
}

func FailStream[T any](err error) Stream[T] {
	return stream.Fail[T](err)
}

// NewStream runs produce on its own goroutine. Closing the stream cancels the
// context handed to produce.
func NewStream[T any](ctx context.Context, produce func(ctx context.Context, emit func(T) error) error) Stream[T] {
	return stream.New(ctx, func(ctx context.Context, emit stream.Emit[T]) error {
		return produce(ctx, emit)
	})
}

// StreamStartedAt returns the creation time encoded in a stream id.
func StreamStartedAt(id string) (time.Time, error) {
	return idspkg.StartedAt(id)
}
