package providertest

import (
	"context"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	"github.com/drblury/mediacatalog/internal/sample"
	"github.com/drblury/mediacatalog/internal/stream"
)

// Failing is a catalog whose every call emits the first After items of the
// matching Data slice and then fails with Err.
type Failing struct {
	Data  sample.Dataset
	After int
	Err   error
}

var _ catalog.Catalog = (*Failing)(nil)

func failAfter[T any](ctx context.Context, items []T, n int, err error) stream.Stream[T] {
	if n > len(items) {
		n = len(items)
	}
	return stream.New(ctx, func(ctx context.Context, emit stream.Emit[T]) error {
		for _, item := range items[:n] {
			if e := emit(item); e != nil {
				return e
			}
		}
		return err
	})
}

func (f *Failing) Movies(ctx context.Context) stream.Stream[media.Movie] {
	return failAfter(ctx, f.Data.Movies, f.After, f.Err)
}

func (f *Failing) SearchMovies(ctx context.Context, _ string) stream.Stream[media.Movie] {
	return failAfter(ctx, f.Data.Movies, f.After, f.Err)
}

func (f *Failing) Audio(ctx context.Context) stream.Stream[media.Audio] {
	return failAfter(ctx, f.Data.Audio, f.After, f.Err)
}

func (f *Failing) SearchAudio(ctx context.Context, _ string) stream.Stream[media.Audio] {
	return failAfter(ctx, f.Data.Audio, f.After, f.Err)
}

func (f *Failing) AudioTracks(ctx context.Context, _ string) stream.Stream[media.Audio] {
	return failAfter(ctx, f.Data.Audio, f.After, f.Err)
}

func (f *Failing) TelevisionShows(ctx context.Context) stream.Stream[media.TelevisionShow] {
	return failAfter(ctx, f.Data.Shows, f.After, f.Err)
}

func (f *Failing) SearchTelevisionShows(ctx context.Context, _ string) stream.Stream[media.TelevisionShow] {
	return failAfter(ctx, f.Data.Shows, f.After, f.Err)
}

func (f *Failing) Episodes(ctx context.Context, _ string, _ int) stream.Stream[media.TelevisionShow] {
	return failAfter(ctx, f.Data.Shows, f.After, f.Err)
}

func (f *Failing) Series(ctx context.Context, _ string) stream.Stream[media.TelevisionShow] {
	return failAfter(ctx, f.Data.Shows, f.After, f.Err)
}
