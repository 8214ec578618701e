// Package relational provides catalogs backed by a SQL database through
// database/sql. PostgreSQL (lib/pq) and SQLite (go-sqlite3) are registered as
// the "postgres" and "sqlite" providers.
//
// Every operation is a single parameterized SELECT whose rows are scanned
// lazily on the producer goroutine, so at most one buffer of items is held in
// memory per stream. Closing the stream cancels the query and closes the cursor.
package relational

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/stream"
)

// Catalog runs catalog operations as SQL queries.
type Catalog struct {
	db   *sql.DB
	name string
	opts []stream.Option
}

var _ catalog.Catalog = (*Catalog)(nil)

// New returns a catalog reading from db. The schema must exist; see Migrate.
func New(db *sql.DB, opts ...stream.Option) *Catalog {
	return NewNamed("relational", db, opts...)
}

// NewNamed is New with the provider name reported in ProviderUnavailableError.
func NewNamed(name string, db *sql.DB, opts ...stream.Option) *Catalog {
	return &Catalog{db: db, name: name, opts: opts}
}

// unavailable reports a failed query or cursor as the store being
// unavailable. Cancellation and deadlines are returned unchanged.
func (c *Catalog) unavailable(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return rterrors.Unavailable(c.name, err)
}

const (
	movieColumns = `id, title, year_released, studio, content_rating, critics_rating, audience_rating,
		summary, released, genres, tagline, duration, directors, roles`
	audioColumns = `id, title, year_released, album_artist, album, artist, track_number, duration`
	showColumns  = `id, title, year_released, series_title, season, episode, content_rating, summary,
		rating, studio, originally_aired, duration, directors, writers`
)

var (
	selectMovies     = `SELECT ` + movieColumns + ` FROM movies`
	searchMovies     = selectMovies + ` WHERE ` + anyLike("title", "tagline", "summary")
	selectAudio      = `SELECT ` + audioColumns + ` FROM audio`
	searchAudio      = selectAudio + ` WHERE ` + anyLike("title", "album", "album_artist", "artist")
	selectAudioAlbum = selectAudio + ` WHERE lower(album) = $1`
	selectShows      = `SELECT ` + showColumns + ` FROM tv_shows`
	searchShows      = selectShows + ` WHERE ` + anyLike("title", "series_title", "summary")
	selectSeries     = selectShows + ` WHERE lower(series_title) = $1`
	selectEpisodes   = selectSeries + ` AND season = $2`
)

// anyLike matches $1 against the lowercased value of any column. Both drivers
// number a repeated $1 as a single parameter.
func anyLike(columns ...string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = `lower(` + col + `) LIKE $1 ESCAPE '\'`
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds the LIKE pattern for a case-insensitive substring match.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(catalog.Needle(text)) + "%"
}

type scanner interface {
	Scan(dest ...any) error
}

func query[T any](c *Catalog, ctx context.Context, scan func(scanner) (T, error), q string, args ...any) stream.Stream[T] {
	return stream.New(ctx, func(ctx context.Context, emit stream.Emit[T]) error {
		rows, err := c.db.QueryContext(ctx, q, args...)
		if err != nil {
			return c.unavailable(ctx, err)
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return err
			}
			if err := emit(item); err != nil {
				return err
			}
		}
		if err := rows.Err(); err != nil {
			return c.unavailable(ctx, err)
		}
		return nil
	}, c.opts...)
}

func (c *Catalog) Movies(ctx context.Context) stream.Stream[media.Movie] {
	return query(c, ctx, scanMovie, selectMovies)
}

func (c *Catalog) SearchMovies(ctx context.Context, text string) stream.Stream[media.Movie] {
	return query(c, ctx, scanMovie, searchMovies, containsPattern(text))
}

func (c *Catalog) Audio(ctx context.Context) stream.Stream[media.Audio] {
	return query(c, ctx, scanAudio, selectAudio)
}

func (c *Catalog) SearchAudio(ctx context.Context, text string) stream.Stream[media.Audio] {
	return query(c, ctx, scanAudio, searchAudio, containsPattern(text))
}

func (c *Catalog) AudioTracks(ctx context.Context, album string) stream.Stream[media.Audio] {
	return query(c, ctx, scanAudio, selectAudioAlbum, catalog.Needle(album))
}

func (c *Catalog) TelevisionShows(ctx context.Context) stream.Stream[media.TelevisionShow] {
	return query(c, ctx, scanShow, selectShows)
}

func (c *Catalog) SearchTelevisionShows(ctx context.Context, text string) stream.Stream[media.TelevisionShow] {
	return query(c, ctx, scanShow, searchShows, containsPattern(text))
}

func (c *Catalog) Episodes(ctx context.Context, series string, season int) stream.Stream[media.TelevisionShow] {
	return query(c, ctx, scanShow, selectEpisodes, catalog.Needle(series), season)
}

func (c *Catalog) Series(ctx context.Context, series string) stream.Stream[media.TelevisionShow] {
	return query(c, ctx, scanShow, selectSeries, catalog.Needle(series))
}

func scanMovie(row scanner) (media.Movie, error) {
	var (
		m        media.Movie
		year     sql.NullInt64
		critics  sql.NullFloat64
		audience sql.NullFloat64
		released sql.NullTime
		seconds  int64
	)
	err := row.Scan(&m.ID, &m.Title, &year, &m.Studio, &m.ContentRating, &critics, &audience,
		&m.Summary, &released, &m.Genres, &m.Tagline, &seconds, &m.Directors, &m.Roles)
	if err != nil {
		return media.Movie{}, err
	}
	m.Year = intPtr(year)
	m.CriticsRating = floatPtr(critics)
	m.AudienceRating = floatPtr(audience)
	m.ReleaseDate = datePtr(released)
	m.Duration = fromSeconds(seconds)
	return m, nil
}

func scanAudio(row scanner) (media.Audio, error) {
	var (
		a       media.Audio
		year    sql.NullInt64
		artist  sql.NullString
		seconds int64
	)
	err := row.Scan(&a.ID, &a.Title, &year, &a.AlbumArtist, &a.Album, &artist, &a.TrackNumber, &seconds)
	if err != nil {
		return media.Audio{}, err
	}
	a.Year = intPtr(year)
	if artist.Valid {
		a.Artist = media.Ptr(artist.String)
	}
	a.Duration = fromSeconds(seconds)
	return a, nil
}

func scanShow(row scanner) (media.TelevisionShow, error) {
	var (
		s       media.TelevisionShow
		year    sql.NullInt64
		rating  sql.NullFloat64
		aired   sql.NullTime
		seconds int64
	)
	err := row.Scan(&s.ID, &s.Title, &year, &s.SeriesTitle, &s.Season, &s.Episode, &s.ContentRating,
		&s.Summary, &rating, &s.Studio, &aired, &seconds, &s.Directors, &s.Writers)
	if err != nil {
		return media.TelevisionShow{}, err
	}
	s.Year = intPtr(year)
	s.Rating = floatPtr(rating)
	s.OriginallyAired = datePtr(aired)
	s.Duration = fromSeconds(seconds)
	return s, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return media.Ptr(int(v.Int64))
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return media.Ptr(v.Float64)
}

func datePtr(v sql.NullTime) *media.Date {
	if !v.Valid {
		return nil
	}
	return media.Ptr(media.DateOf(v.Time))
}

func fromSeconds(s int64) media.Duration {
	return media.Duration(time.Duration(s) * time.Second)
}
