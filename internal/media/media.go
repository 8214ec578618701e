// Package media holds the read-only value types served by the catalog.
//
// Values are produced by a provider for the lifetime of a single stream and are
// never mutated afterwards. Optional fields are pointers; a nil pointer means the
// source had no value (for example "N/A" in the sample data).
package media

// Kind names one of the catalog media kinds. The value doubles as the SSE event
// name for items of that kind.
type Kind string

const (
	KindMovie          Kind = "movie"
	KindAudio          Kind = "audio"
	KindTelevisionShow Kind = "shows"
)

// Item is the base shared by every media kind. ID is unique within its kind only.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Year  *int   `json:"year,omitempty"`
}

// Base returns the shared fields. It is promoted to every media kind so
// generic code can reach id and title without knowing the concrete type.
func (i Item) Base() Item { return i }

// Entry is satisfied by Movie, Audio and TelevisionShow.
type Entry interface {
	Base() Item
}

// Movie is a film in the media library.
type Movie struct {
	Item
	Studio         string   `json:"studio"`
	ContentRating  string   `json:"contentRating"`
	Summary        string   `json:"summary"`
	Genres         string   `json:"genres"`
	Tagline        string   `json:"tagline"`
	Directors      string   `json:"directors"`
	Roles          string   `json:"roles"`
	Duration       Duration `json:"duration"`
	CriticsRating  *float64 `json:"criticsRating,omitempty"`
	AudienceRating *float64 `json:"audienceRating,omitempty"`
	ReleaseDate    *Date    `json:"releaseDate,omitempty"`
}

// Audio is a single track. Artist is only set when it differs from
// AlbumArtist, which is the case for compilation albums.
type Audio struct {
	Item
	AlbumArtist string   `json:"albumArtist"`
	Album       string   `json:"album"`
	Artist      *string  `json:"artist,omitempty"`
	TrackNumber int      `json:"trackNumber"`
	Duration    Duration `json:"duration"`
}

// TelevisionShow is one episode of a series.
type TelevisionShow struct {
	Item
	SeriesTitle     string   `json:"seriesTitle"`
	ContentRating   string   `json:"contentRating"`
	Summary         string   `json:"summary"`
	Studio          string   `json:"studio"`
	Directors       string   `json:"directors"`
	Writers         string   `json:"writers"`
	Season          int      `json:"season"`
	Episode         int      `json:"episode"`
	Rating          *float64 `json:"rating,omitempty"`
	OriginallyAired *Date    `json:"originallyAired,omitempty"`
	Duration        Duration `json:"duration"`
}

// Ptr returns a pointer to v. It keeps optional field literals short.
func Ptr[T any](v T) *T { return &v }
