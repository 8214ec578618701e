// Package catalog defines the read contract shared by every media provider and
// the instrumented decorator placed in front of them.
//
// Every operation returns a stream and never an error: failures of any kind
// (I/O, parsing, connectivity, even a panicking provider) arrive as the
// terminal error of the returned stream.
package catalog

import (
	"context"

	"github.com/drblury/mediacatalog/internal/media"
	"github.com/drblury/mediacatalog/internal/stream"
)

// Catalog is implemented by every provider and by Instrumented.
type Catalog interface {
	Movies(ctx context.Context) stream.Stream[media.Movie]
	// SearchMovies matches text case-insensitively against title, summary and tagline.
	SearchMovies(ctx context.Context, text string) stream.Stream[media.Movie]

	Audio(ctx context.Context) stream.Stream[media.Audio]
	// SearchAudio matches text against title, album, album artist and artist.
	SearchAudio(ctx context.Context, text string) stream.Stream[media.Audio]
	// AudioTracks returns the tracks whose album equals album, ignoring case.
	AudioTracks(ctx context.Context, album string) stream.Stream[media.Audio]

	TelevisionShows(ctx context.Context) stream.Stream[media.TelevisionShow]
	// SearchTelevisionShows matches text against episode title, series title and summary.
	SearchTelevisionShows(ctx context.Context, text string) stream.Stream[media.TelevisionShow]
	// Episodes returns one season of a series. The series title is compared
	// ignoring case.
	Episodes(ctx context.Context, series string, season int) stream.Stream[media.TelevisionShow]
	// Series returns every episode of a series.
	Series(ctx context.Context, series string) stream.Stream[media.TelevisionShow]
}

// Operation enumerates the catalog calls. Its String form is the stable metric
// label value.
type Operation int

const (
	OpMovies Operation = iota + 1
	OpSearchMovies
	OpAudio
	OpSearchAudio
	OpAudioTracks
	OpTelevisionShows
	OpSearchTelevisionShows
	OpEpisodes
	OpSeries
)

type operationInfo struct {
	name        string
	description string
	kind        media.Kind
}

var operationTable = map[Operation]operationInfo{
	OpMovies:                {"get_movies", "All movies", media.KindMovie},
	OpSearchMovies:          {"search_movies", "Movies whose title, summary or tagline contain the text", media.KindMovie},
	OpAudio:                 {"get_audio", "All audio tracks", media.KindAudio},
	OpSearchAudio:           {"search_audio", "Tracks whose title, album or artists contain the text", media.KindAudio},
	OpAudioTracks:           {"get_audio_tracks", "Tracks of one album", media.KindAudio},
	OpTelevisionShows:       {"get_television_shows", "All television episodes", media.KindTelevisionShow},
	OpSearchTelevisionShows: {"search_television_shows", "Episodes whose title, series or summary contain the text", media.KindTelevisionShow},
	OpEpisodes:              {"get_episodes", "Episodes of one season of a series", media.KindTelevisionShow},
	OpSeries:                {"get_series", "All episodes of a series", media.KindTelevisionShow},
}

func (o Operation) String() string {
	if info, ok := operationTable[o]; ok {
		return info.name
	}
	return "unknown"
}

// Description is a human readable summary used by the operations endpoint.
func (o Operation) Description() string { return operationTable[o].description }

// Kind is the media kind the operation yields.
func (o Operation) Kind() media.Kind { return operationTable[o].kind }

// Operations lists every operation in declaration order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operationTable))
	for op := OpMovies; op <= OpSeries; op++ {
		ops = append(ops, op)
	}
	return ops
}
