// Package memory provides a catalog backed by an in-process dataset, filtered
// by linear scan. It is the default backend and the one used for demos.
package memory

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/sample"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/provider"
)

// ProviderName is the name used to register this provider.
const ProviderName = "memory"

// DatasetLoader allows overriding how the dataset is read, for testing.
var DatasetLoader = sample.LoadDir

func init() {
	provider.RegisterWithCapabilities(ProviderName, Build, provider.MemoryCapabilities)
}

// Build loads the dataset from cfg.GetDatasetDir.
func Build(ctx context.Context, cfg provider.Config, logger watermill.LoggerAdapter) (provider.Provider, error) {
	dir := cfg.GetDatasetDir()
	if dir == "" {
		return provider.Provider{}, rterrors.ErrDatasetRequired
	}
	ds, err := DatasetLoader(dir)
	if err != nil {
		return provider.Provider{}, err
	}
	logger.Info("Loaded media dataset", watermill.LogFields{
		"dir":    dir,
		"movies": len(ds.Movies),
		"audio":  len(ds.Audio),
		"shows":  len(ds.Shows),
	})

	pool := stream.NewPool(cfg.GetProducerConcurrency())
	return provider.Provider{
		Catalog: New(ds, provider.StreamOptions(cfg, pool)...),
	}, nil
}

// Capabilities returns the capabilities of this provider.
func Capabilities() provider.Capabilities {
	return provider.MemoryCapabilities
}

// Catalog filters an immutable dataset. Every call scans the data afresh, so
// repeated calls with the same arguments return the same items in the same order.
type Catalog struct {
	data sample.Dataset
	opts []stream.Option
}

var _ catalog.Catalog = (*Catalog)(nil)

// New returns a catalog over ds. The slices are not copied and must not be
// modified afterwards.
func New(ds sample.Dataset, opts ...stream.Option) *Catalog {
	return &Catalog{data: ds, opts: opts}
}

func scan[T any](ctx context.Context, items []T, keep func(T) bool, opts []stream.Option) stream.Stream[T] {
	return stream.New(ctx, func(ctx context.Context, emit stream.Emit[T]) error {
		for _, item := range items {
			if keep != nil && !keep(item) {
				continue
			}
			if err := emit(item); err != nil {
				return err
			}
		}
		return nil
	}, opts...)
}

func (c *Catalog) Movies(ctx context.Context) stream.Stream[media.Movie] {
	return scan(ctx, c.data.Movies, nil, c.opts)
}

func (c *Catalog) SearchMovies(ctx context.Context, text string) stream.Stream[media.Movie] {
	needle := catalog.Needle(text)
	return scan(ctx, c.data.Movies, func(m media.Movie) bool { return catalog.MovieMatches(m, needle) }, c.opts)
}

func (c *Catalog) Audio(ctx context.Context) stream.Stream[media.Audio] {
	return scan(ctx, c.data.Audio, nil, c.opts)
}

func (c *Catalog) SearchAudio(ctx context.Context, text string) stream.Stream[media.Audio] {
	needle := catalog.Needle(text)
	return scan(ctx, c.data.Audio, func(a media.Audio) bool { return catalog.AudioMatches(a, needle) }, c.opts)
}

func (c *Catalog) AudioTracks(ctx context.Context, album string) stream.Stream[media.Audio] {
	return scan(ctx, c.data.Audio, func(a media.Audio) bool { return catalog.IsTrackOf(a, album) }, c.opts)
}

func (c *Catalog) TelevisionShows(ctx context.Context) stream.Stream[media.TelevisionShow] {
	return scan(ctx, c.data.Shows, nil, c.opts)
}

func (c *Catalog) SearchTelevisionShows(ctx context.Context, text string) stream.Stream[media.TelevisionShow] {
	needle := catalog.Needle(text)
	return scan(ctx, c.data.Shows, func(s media.TelevisionShow) bool { return catalog.ShowMatches(s, needle) }, c.opts)
}

func (c *Catalog) Episodes(ctx context.Context, series string, season int) stream.Stream[media.TelevisionShow] {
	return scan(ctx, c.data.Shows, func(s media.TelevisionShow) bool { return catalog.IsEpisodeOf(s, series, season) }, c.opts)
}

func (c *Catalog) Series(ctx context.Context, series string) stream.Stream[media.TelevisionShow] {
	return scan(ctx, c.data.Shows, func(s media.TelevisionShow) bool { return catalog.IsSeries(s, series) }, c.opts)
}
