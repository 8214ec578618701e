package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Message is implemented by every hand-encoded message in this package.
type Message interface {
	MarshalWire() ([]byte, error)
	UnmarshalWire(b []byte) error
}

var (
	_ Message = (*Movie)(nil)
	_ Message = (*Audio)(nil)
	_ Message = (*TelevisionShow)(nil)
	_ Message = (*SearchRequest)(nil)
	_ Message = (*TracksRequest)(nil)
	_ Message = (*EpisodesRequest)(nil)
	_ Message = (*SeriesRequest)(nil)
)

// Movie is media.v1.Movie.
type Movie struct {
	Id             string
	Title          string
	Year           *int32
	Studio         string
	ContentRating  string
	CriticsRating  *float64
	Summary        string
	ReleaseDate    *timestamppb.Timestamp
	Genres         string
	Tagline        string
	Duration       *durationpb.Duration
	Directors      string
	Roles          string
	AudienceRating *float64
}

func (m *Movie) MarshalWire() ([]byte, error) {
	var e encoder
	e.string(1, m.Id)
	e.string(2, m.Title)
	e.optInt32(3, m.Year)
	e.string(4, m.Studio)
	e.string(5, m.ContentRating)
	e.optDouble(6, m.CriticsRating)
	e.string(7, m.Summary)
	if err := e.timestamp(8, m.ReleaseDate); err != nil {
		return nil, err
	}
	e.string(9, m.Genres)
	e.string(10, m.Tagline)
	if err := e.duration(11, m.Duration); err != nil {
		return nil, err
	}
	e.string(12, m.Directors)
	e.string(13, m.Roles)
	e.optDouble(14, m.AudienceRating)
	return e.b, nil
}

func (m *Movie) UnmarshalWire(b []byte) error {
	*m = Movie{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &m.Id)
		case 2:
			return consumeString(typ, b, &m.Title)
		case 3:
			return consumeOptInt32(typ, b, &m.Year)
		case 4:
			return consumeString(typ, b, &m.Studio)
		case 5:
			return consumeString(typ, b, &m.ContentRating)
		case 6:
			return consumeOptDouble(typ, b, &m.CriticsRating)
		case 7:
			return consumeString(typ, b, &m.Summary)
		case 8:
			return consumeTimestamp(typ, b, &m.ReleaseDate)
		case 9:
			return consumeString(typ, b, &m.Genres)
		case 10:
			return consumeString(typ, b, &m.Tagline)
		case 11:
			return consumeDuration(typ, b, &m.Duration)
		case 12:
			return consumeString(typ, b, &m.Directors)
		case 13:
			return consumeString(typ, b, &m.Roles)
		case 14:
			return consumeOptDouble(typ, b, &m.AudienceRating)
		}
		return 0, nil
	})
}

// Audio is media.v1.Audio.
type Audio struct {
	Id          string
	Title       string
	Year        *int32
	AlbumArtist string
	Album       string
	Artist      *string
	TrackNumber int32
	Duration    *durationpb.Duration
}

func (a *Audio) MarshalWire() ([]byte, error) {
	var e encoder
	e.string(1, a.Id)
	e.string(2, a.Title)
	e.optInt32(3, a.Year)
	e.string(4, a.AlbumArtist)
	e.string(5, a.Album)
	e.optString(6, a.Artist)
	e.int32(7, a.TrackNumber)
	if err := e.duration(8, a.Duration); err != nil {
		return nil, err
	}
	return e.b, nil
}

func (a *Audio) UnmarshalWire(b []byte) error {
	*a = Audio{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &a.Id)
		case 2:
			return consumeString(typ, b, &a.Title)
		case 3:
			return consumeOptInt32(typ, b, &a.Year)
		case 4:
			return consumeString(typ, b, &a.AlbumArtist)
		case 5:
			return consumeString(typ, b, &a.Album)
		case 6:
			return consumeOptString(typ, b, &a.Artist)
		case 7:
			return consumeInt32(typ, b, &a.TrackNumber)
		case 8:
			return consumeDuration(typ, b, &a.Duration)
		}
		return 0, nil
	})
}

// TelevisionShow is media.v1.TelevisionShow.
type TelevisionShow struct {
	Id              string
	Title           string
	Year            *int32
	SeriesTitle     string
	Season          int32
	Episode         int32
	ContentRating   string
	Summary         string
	Rating          *float64
	Studio          string
	OriginallyAired *timestamppb.Timestamp
	Duration        *durationpb.Duration
	Directors       string
	Writers         string
}

func (s *TelevisionShow) MarshalWire() ([]byte, error) {
	var e encoder
	e.string(1, s.Id)
	e.string(2, s.Title)
	e.optInt32(3, s.Year)
	e.string(4, s.SeriesTitle)
	e.int32(5, s.Season)
	e.int32(6, s.Episode)
	e.string(7, s.ContentRating)
	e.string(8, s.Summary)
	e.optDouble(9, s.Rating)
	e.string(10, s.Studio)
	if err := e.timestamp(11, s.OriginallyAired); err != nil {
		return nil, err
	}
	if err := e.duration(12, s.Duration); err != nil {
		return nil, err
	}
	e.string(13, s.Directors)
	e.string(14, s.Writers)
	return e.b, nil
}

func (s *TelevisionShow) UnmarshalWire(b []byte) error {
	*s = TelevisionShow{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &s.Id)
		case 2:
			return consumeString(typ, b, &s.Title)
		case 3:
			return consumeOptInt32(typ, b, &s.Year)
		case 4:
			return consumeString(typ, b, &s.SeriesTitle)
		case 5:
			return consumeInt32(typ, b, &s.Season)
		case 6:
			return consumeInt32(typ, b, &s.Episode)
		case 7:
			return consumeString(typ, b, &s.ContentRating)
		case 8:
			return consumeString(typ, b, &s.Summary)
		case 9:
			return consumeOptDouble(typ, b, &s.Rating)
		case 10:
			return consumeString(typ, b, &s.Studio)
		case 11:
			return consumeTimestamp(typ, b, &s.OriginallyAired)
		case 12:
			return consumeDuration(typ, b, &s.Duration)
		case 13:
			return consumeString(typ, b, &s.Directors)
		case 14:
			return consumeString(typ, b, &s.Writers)
		}
		return 0, nil
	})
}

// SearchRequest is media.v1.SearchRequest.
type SearchRequest struct {
	SearchText string
}

func (r *SearchRequest) MarshalWire() ([]byte, error) {
	var e encoder
	e.string(1, r.SearchText)
	return e.b, nil
}

func (r *SearchRequest) UnmarshalWire(b []byte) error {
	*r = SearchRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &r.SearchText)
		}
		return 0, nil
	})
}

// TracksRequest is media.v1.TracksRequest.
type TracksRequest struct {
	AlbumTitle string
}

func (r *TracksRequest) MarshalWire() ([]byte, error) {
	var e encoder
	e.string(1, r.AlbumTitle)
	return e.b, nil
}

func (r *TracksRequest) UnmarshalWire(b []byte) error {
	*r = TracksRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &r.AlbumTitle)
		}
		return 0, nil
	})
}

// EpisodesRequest is media.v1.EpisodesRequest.
type EpisodesRequest struct {
	SeriesTitle string
	Season      int32
}

func (r *EpisodesRequest) MarshalWire() ([]byte, error) {
	var e encoder
	e.string(1, r.SeriesTitle)
	e.int32(2, r.Season)
	return e.b, nil
}

func (r *EpisodesRequest) UnmarshalWire(b []byte) error {
	*r = EpisodesRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeString(typ, b, &r.SeriesTitle)
		case 2:
			return consumeInt32(typ, b, &r.Season)
		}
		return 0, nil
	})
}

// SeriesRequest is media.v1.SeriesRequest.
type SeriesRequest struct {
	SeriesTitle string
}

func (r *SeriesRequest) MarshalWire() ([]byte, error) {
	var e encoder
	e.string(1, r.SeriesTitle)
	return e.b, nil
}

func (r *SeriesRequest) UnmarshalWire(b []byte) error {
	*r = SeriesRequest{}
	return decode(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeString(typ, b, &r.SeriesTitle)
		}
		return 0, nil
	})
}
