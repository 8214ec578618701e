// Package sample loads the reference media dataset from its CSV exports.
//
// Three files are expected in a directory: movies.csv, audio.csv and tv.csv,
// each with a header row. Missing values are written as "N/A" or left empty.
package sample

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/drblury/mediacatalog/internal/media"
)

const (
	MoviesFile = "movies.csv"
	AudioFile  = "audio.csv"
	ShowsFile  = "tv.csv"
)

// Column headers as exported by the media server.
const (
	colMediaID         = "Media ID"
	colTitle           = "Title"
	colStudio          = "Studio"
	colContentRating   = "Content Rating"
	colYear            = "Year"
	colRating          = "Rating"
	colSummary         = "Summary"
	colGenres          = "Genres"
	colTagline         = "Tagline"
	colReleaseDate     = "Release Date"
	colDuration        = "Duration"
	colDirectors       = "Directors"
	colRoles           = "Roles"
	colAudienceRating  = "Audience Rating"
	colSeriesTitle     = "Series Title"
	colEpisodeTitle    = "Episode Title"
	colEpisode         = "Episode"
	colSeason          = "Season"
	colOriginallyAired = "Originally Aired"
	colWriters         = "Writers"
	colAlbumArtist     = "Album Artist"
	colAlbum           = "Album"
	colArtist          = "Artist"
	colTrackNumber     = "Track No"
)

// Dataset is the full reference data in file order.
type Dataset struct {
	Movies []media.Movie
	Audio  []media.Audio
	Shows  []media.TelevisionShow
}

// LoadDir reads all three files from dir.
func LoadDir(dir string) (Dataset, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads all three files from fsys.
func LoadFS(fsys fs.FS) (Dataset, error) {
	var (
		ds   Dataset
		errs []error
	)
	var err error
	if ds.Movies, err = loadFile(fsys, MoviesFile, ReadMovies); err != nil {
		errs = append(errs, err)
	}
	if ds.Audio, err = loadFile(fsys, AudioFile, ReadAudio); err != nil {
		errs = append(errs, err)
	}
	if ds.Shows, err = loadFile(fsys, ShowsFile, ReadShows); err != nil {
		errs = append(errs, err)
	}
	return ds, errors.Join(errs...)
}

func loadFile[T any](fsys fs.FS, name string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	defer f.Close()
	items, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("sample: %s: %w", name, err)
	}
	return items, nil
}

// ReadMovies parses a movies export.
func ReadMovies(r io.Reader) ([]media.Movie, error) {
	return readRecords(r, func(rec record) (media.Movie, error) {
		m := media.Movie{
			Item: media.Item{
				ID:    rec.get(colMediaID),
				Title: rec.get(colTitle),
			},
			Studio:        rec.get(colStudio),
			ContentRating: rec.get(colContentRating),
			Summary:       rec.get(colSummary),
			Genres:        rec.get(colGenres),
			Tagline:       rec.get(colTagline),
			Directors:     rec.get(colDirectors),
			Roles:         rec.get(colRoles),
		}
		var err error
		if m.Year, err = rec.optionalInt(colYear); err != nil {
			return m, err
		}
		if m.CriticsRating, err = rec.optionalFloat(colRating); err != nil {
			return m, err
		}
		if m.AudienceRating, err = rec.optionalFloat(colAudienceRating); err != nil {
			return m, err
		}
		if m.ReleaseDate, err = rec.optionalDate(colReleaseDate); err != nil {
			return m, err
		}
		m.Duration, err = rec.duration(colDuration)
		return m, err
	})
}

// ReadAudio parses an audio export. Artist is kept only when it differs from
// the album artist.
func ReadAudio(r io.Reader) ([]media.Audio, error) {
	return readRecords(r, func(rec record) (media.Audio, error) {
		a := media.Audio{
			Item: media.Item{
				ID:    rec.get(colMediaID),
				Title: rec.get(colTitle),
			},
			AlbumArtist: rec.get(colAlbumArtist),
			Album:       rec.get(colAlbum),
		}
		track, err := strconv.Atoi(rec.get(colTrackNumber))
		if err != nil {
			return a, fmt.Errorf("%s: %w", colTrackNumber, err)
		}
		a.TrackNumber = track
		if a.Year, err = rec.optionalInt(colYear); err != nil {
			return a, err
		}
		if artist, ok := rec.value(colArtist); ok && artist != a.AlbumArtist {
			a.Artist = &artist
		}
		a.Duration, err = rec.duration(colDuration)
		return a, err
	})
}

// ReadShows parses a television export. Year, season and episode fall back to
// zero when missing.
func ReadShows(r io.Reader) ([]media.TelevisionShow, error) {
	return readRecords(r, func(rec record) (media.TelevisionShow, error) {
		s := media.TelevisionShow{
			Item: media.Item{
				ID:    rec.get(colMediaID),
				Title: rec.get(colEpisodeTitle),
			},
			SeriesTitle:   rec.get(colSeriesTitle),
			ContentRating: rec.get(colContentRating),
			Summary:       rec.get(colSummary),
			Studio:        rec.get(colStudio),
			Directors:     rec.get(colDirectors),
			Writers:       rec.get(colWriters),
		}
		year, err := rec.intOrZero(colYear)
		if err != nil {
			return s, err
		}
		s.Year = &year
		if s.Season, err = rec.intOrZero(colSeason); err != nil {
			return s, err
		}
		if s.Episode, err = rec.intOrZero(colEpisode); err != nil {
			return s, err
		}
		if s.Rating, err = rec.optionalFloat(colRating); err != nil {
			return s, err
		}
		if s.OriginallyAired, err = rec.optionalDate(colOriginallyAired); err != nil {
			return s, err
		}
		s.Duration, err = rec.duration(colDuration)
		return s, err
	})
}

func readRecords[T any](r io.Reader, build func(record) (T, error)) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		index[strings.TrimSpace(name)] = i
	}

	var out []T
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		line, _ := cr.FieldPos(0)
		item, err := build(record{index: index, fields: fields})
		if err != nil {
			return out, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, item)
	}
}

type record struct {
	index  map[string]int
	fields []string
}

func (r record) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// value returns the column and whether it holds a real value.
func (r record) value(col string) (string, bool) {
	v := strings.TrimSpace(r.get(col))
	if v == "" || v == "N/A" {
		return "", false
	}
	return v, true
}

func (r record) optionalInt(col string) (*int, error) {
	v, ok := r.value(col)
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col, err)
	}
	return &n, nil
}

func (r record) intOrZero(col string) (int, error) {
	n, err := r.optionalInt(col)
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

func (r record) optionalFloat(col string) (*float64, error) {
	v, ok := r.value(col)
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col, err)
	}
	return &f, nil
}

func (r record) optionalDate(col string) (*media.Date, error) {
	v, ok := r.value(col)
	if !ok {
		return nil, nil
	}
	d, err := media.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col, err)
	}
	return &d, nil
}

func (r record) duration(col string) (media.Duration, error) {
	v, ok := r.value(col)
	if !ok {
		return 0, nil
	}
	d, err := ParseClock(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return d, nil
}

// ParseClock parses an hh:mm:ss running time.
func ParseClock(s string) (media.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock duration %q", s)
	}
	var hms [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid clock duration %q", s)
		}
		hms[i] = n
	}
	return media.HMS(hms[0], hms[1], hms[2]), nil
}
