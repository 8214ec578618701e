package catalog

import (
	"strings"

	"github.com/drblury/mediacatalog/internal/media"
)

// Predicates used by providers that filter in process. Search text is lowered
// once by the caller through Needle.

// Needle normalises search text for the Matches* predicates.
func Needle(text string) string { return strings.ToLower(text) }

func containsFold(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

func MovieMatches(m media.Movie, needle string) bool {
	return containsFold(m.Title, needle) ||
		containsFold(m.Summary, needle) ||
		containsFold(m.Tagline, needle)
}

func AudioMatches(a media.Audio, needle string) bool {
	if containsFold(a.Title, needle) || containsFold(a.Album, needle) || containsFold(a.AlbumArtist, needle) {
		return true
	}
	return a.Artist != nil && containsFold(*a.Artist, needle)
}

func ShowMatches(s media.TelevisionShow, needle string) bool {
	return containsFold(s.Title, needle) ||
		containsFold(s.SeriesTitle, needle) ||
		containsFold(s.Summary, needle)
}

// IsTrackOf is exact equality ignoring case, not a substring match.
func IsTrackOf(a media.Audio, album string) bool {
	return strings.EqualFold(a.Album, album)
}

func IsEpisodeOf(s media.TelevisionShow, series string, season int) bool {
	return s.Season == season && strings.EqualFold(s.SeriesTitle, series)
}

func IsSeries(s media.TelevisionShow, series string) bool {
	return strings.EqualFold(s.SeriesTitle, series)
}
