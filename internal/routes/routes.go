// Package routes maps catalog operations onto HTTP paths. The REST server uses
// the patterns to mount handlers; the remote SSE provider uses the same table
// to build request URLs, so both ends agree on the layout.
package routes

import (
	"net/url"
	"strings"

	"github.com/drblury/mediacatalog/internal/catalog"
)

// Route parameter names used in patterns.
const (
	ParamText   = "text"
	ParamAlbum  = "album"
	ParamSeries = "series"
	ParamSeason = "season"
)

// Paths holds the configurable path segments. Empty fields take their default.
type Paths struct {
	Root   string `yaml:"root"`
	Stream string `yaml:"stream"`
	Movies string `yaml:"movies"`
	Audio  string `yaml:"audio"`
	Shows  string `yaml:"shows"`
	Search string `yaml:"search"`
	Tracks string `yaml:"tracks"`
	Series string `yaml:"series"`
}

// Default is the layout served at /media and /media/stream.
func Default() Paths {
	return Paths{
		Root:   "/media",
		Stream: "stream",
		Movies: "movies",
		Audio:  "audio",
		Shows:  "shows",
		Search: "search",
		Tracks: "tracks",
		Series: "series",
	}
}

// WithDefaults fills empty segments.
func (p Paths) WithDefaults() Paths {
	d := Default()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&p.Root, d.Root)
	fill(&p.Stream, d.Stream)
	fill(&p.Movies, d.Movies)
	fill(&p.Audio, d.Audio)
	fill(&p.Shows, d.Shows)
	fill(&p.Search, d.Search)
	fill(&p.Tracks, d.Tracks)
	fill(&p.Series, d.Series)
	p.Root = "/" + strings.Trim(p.Root, "/")
	return p
}

func placeholder(name string) string { return "{" + name + "}" }

func (p Paths) segments(op catalog.Operation) []string {
	switch op {
	case catalog.OpMovies:
		return []string{p.Movies}
	case catalog.OpSearchMovies:
		return []string{p.Movies, p.Search, placeholder(ParamText)}
	case catalog.OpAudio:
		return []string{p.Audio}
	case catalog.OpSearchAudio:
		return []string{p.Audio, p.Search, placeholder(ParamText)}
	case catalog.OpAudioTracks:
		return []string{p.Audio, p.Tracks, placeholder(ParamAlbum)}
	case catalog.OpTelevisionShows:
		return []string{p.Shows}
	case catalog.OpSearchTelevisionShows:
		return []string{p.Shows, p.Search, placeholder(ParamText)}
	case catalog.OpSeries:
		return []string{p.Shows, p.Series, placeholder(ParamSeries)}
	case catalog.OpEpisodes:
		return []string{p.Shows, p.Series, placeholder(ParamSeries), placeholder(ParamSeason)}
	}
	return nil
}

// Base is the mount point of either the buffered or the streaming routes.
func (p Paths) Base(streaming bool) string {
	p = p.WithDefaults()
	if streaming {
		return p.Root + "/" + strings.Trim(p.Stream, "/")
	}
	return p.Root
}

// Pattern returns the route pattern for op relative to Base, with {param}
// placeholders.
func (p Paths) Pattern(op catalog.Operation) string {
	p = p.WithDefaults()
	return "/" + strings.Join(p.segments(op), "/")
}

// Path returns the concrete request path for op. Arguments fill the
// placeholders in order and are path-escaped.
func (p Paths) Path(op catalog.Operation, streaming bool, args ...string) string {
	pattern := p.Pattern(op)
	parts := strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	next := 0
	for i, part := range parts {
		if strings.HasPrefix(part, "{") && next < len(args) {
			parts[i] = url.PathEscape(args[next])
			next++
		}
	}
	return p.Base(streaming) + "/" + strings.Join(parts, "/")
}
