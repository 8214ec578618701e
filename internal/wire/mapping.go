package wire

import (
	"fmt"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/drblury/mediacatalog/internal/media"
)

// FromMovie maps a movie to its wire message.
func FromMovie(m media.Movie) *Movie {
	return &Movie{
		Id:             m.ID,
		Title:          m.Title,
		Year:           toInt32(m.Year),
		Studio:         m.Studio,
		ContentRating:  m.ContentRating,
		CriticsRating:  m.CriticsRating,
		Summary:        m.Summary,
		ReleaseDate:    toTimestamp(m.ReleaseDate),
		Genres:         m.Genres,
		Tagline:        m.Tagline,
		Duration:       durationpb.New(m.Duration.Std()),
		Directors:      m.Directors,
		Roles:          m.Roles,
		AudienceRating: m.AudienceRating,
	}
}

// ToMovie maps a wire message back to a movie.
func ToMovie(w *Movie) (media.Movie, error) {
	d, err := fromDuration(w.Duration)
	if err != nil {
		return media.Movie{}, fmt.Errorf("movie %s: %w", w.Id, err)
	}
	released, err := fromTimestamp(w.ReleaseDate)
	if err != nil {
		return media.Movie{}, fmt.Errorf("movie %s: %w", w.Id, err)
	}
	return media.Movie{
		Item:           media.Item{ID: w.Id, Title: w.Title, Year: fromInt32(w.Year)},
		Studio:         w.Studio,
		ContentRating:  w.ContentRating,
		Summary:        w.Summary,
		Genres:         w.Genres,
		Tagline:        w.Tagline,
		Directors:      w.Directors,
		Roles:          w.Roles,
		Duration:       d,
		CriticsRating:  w.CriticsRating,
		AudienceRating: w.AudienceRating,
		ReleaseDate:    released,
	}, nil
}

// FromAudio maps an audio track to its wire message.
func FromAudio(a media.Audio) *Audio {
	return &Audio{
		Id:          a.ID,
		Title:       a.Title,
		Year:        toInt32(a.Year),
		AlbumArtist: a.AlbumArtist,
		Album:       a.Album,
		Artist:      a.Artist,
		TrackNumber: int32(a.TrackNumber),
		Duration:    durationpb.New(a.Duration.Std()),
	}
}

// ToAudio maps a wire message back to an audio track.
func ToAudio(w *Audio) (media.Audio, error) {
	d, err := fromDuration(w.Duration)
	if err != nil {
		return media.Audio{}, fmt.Errorf("audio %s: %w", w.Id, err)
	}
	return media.Audio{
		Item:        media.Item{ID: w.Id, Title: w.Title, Year: fromInt32(w.Year)},
		AlbumArtist: w.AlbumArtist,
		Album:       w.Album,
		Artist:      w.Artist,
		TrackNumber: int(w.TrackNumber),
		Duration:    d,
	}, nil
}

// FromTelevisionShow maps an episode to its wire message.
func FromTelevisionShow(s media.TelevisionShow) *TelevisionShow {
	return &TelevisionShow{
		Id:              s.ID,
		Title:           s.Title,
		Year:            toInt32(s.Year),
		SeriesTitle:     s.SeriesTitle,
		Season:          int32(s.Season),
		Episode:         int32(s.Episode),
		ContentRating:   s.ContentRating,
		Summary:         s.Summary,
		Rating:          s.Rating,
		Studio:          s.Studio,
		OriginallyAired: toTimestamp(s.OriginallyAired),
		Duration:        durationpb.New(s.Duration.Std()),
		Directors:       s.Directors,
		Writers:         s.Writers,
	}
}

// ToTelevisionShow maps a wire message back to an episode.
func ToTelevisionShow(w *TelevisionShow) (media.TelevisionShow, error) {
	d, err := fromDuration(w.Duration)
	if err != nil {
		return media.TelevisionShow{}, fmt.Errorf("show %s: %w", w.Id, err)
	}
	aired, err := fromTimestamp(w.OriginallyAired)
	if err != nil {
		return media.TelevisionShow{}, fmt.Errorf("show %s: %w", w.Id, err)
	}
	return media.TelevisionShow{
		Item:            media.Item{ID: w.Id, Title: w.Title, Year: fromInt32(w.Year)},
		SeriesTitle:     w.SeriesTitle,
		ContentRating:   w.ContentRating,
		Summary:         w.Summary,
		Studio:          w.Studio,
		Directors:       w.Directors,
		Writers:         w.Writers,
		Season:          int(w.Season),
		Episode:         int(w.Episode),
		Rating:          w.Rating,
		OriginallyAired: aired,
		Duration:        d,
	}, nil
}

func toInt32(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}

func fromInt32(v *int32) *int {
	if v == nil {
		return nil
	}
	return media.Ptr(int(*v))
}

// toTimestamp encodes a date as midnight UTC.
func toTimestamp(d *media.Date) *timestamppb.Timestamp {
	if d == nil {
		return nil
	}
	return timestamppb.New(d.Time())
}

func fromTimestamp(ts *timestamppb.Timestamp) (*media.Date, error) {
	if ts == nil {
		return nil, nil
	}
	if err := ts.CheckValid(); err != nil {
		return nil, err
	}
	return media.Ptr(media.DateOf(ts.AsTime())), nil
}

func fromDuration(d *durationpb.Duration) (media.Duration, error) {
	if d == nil {
		return 0, nil
	}
	if err := d.CheckValid(); err != nil {
		return 0, err
	}
	return media.Duration(d.AsDuration()), nil
}
