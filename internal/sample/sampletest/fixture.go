// Package sampletest provides the small fixture dataset shared by provider,
// transport and server tests. It mirrors internal/sample/testdata exactly.
package sampletest

import (
	"time"

	"github.com/drblury/mediacatalog/internal/media"
	"github.com/drblury/mediacatalog/internal/sample"
)

// Expected results against Dataset.
const (
	MovieCount = 4
	AudioCount = 7
	ShowCount  = 8

	StarTrekMatches    = 3 // SearchMovies("star trek")
	PinkFloydMatches   = 3 // SearchAudio("pink floyd")
	AjaTracks          = 3 // AudioTracks("aja")
	HawkeyeMatches     = 1 // SearchTelevisionShows("hawkeye")
	BatmanSearch       = 3 // SearchTelevisionShows("batman")
	BatmanSeries       = 2 // Series("batman")
	DocMartinSeason3   = 2 // Episodes("doc martin", 3)
	RepresentativeShow = "24079"
)

func date(y int, m time.Month, d int) *media.Date {
	return &media.Date{Year: y, Month: m, Day: d}
}

// StarTrekII is movie 2588.
func StarTrekII() media.Movie {
	return media.Movie{
		Item:           media.Item{ID: "2588", Title: "Star Trek II: The Wrath of Khan", Year: media.Ptr(1982)},
		Studio:         "Paramount Pictures",
		ContentRating:  "PG",
		Summary:        "Admiral James T. Kirk is feeling old, until Khan escapes exile and steals the Genesis device.",
		Genres:         "Sci-Fi - Drama - Action",
		Tagline:        "At the end of the universe lies the beginning of vengeance.",
		Directors:      "Nicholas Meyer",
		Roles:          "William Shatner - Leonard Nimoy - DeForest Kelley",
		Duration:       media.HMS(1, 53, 1),
		CriticsRating:  media.Ptr(8.8),
		AudienceRating: media.Ptr(9.0),
		ReleaseDate:    date(1982, time.June, 3),
	}
}

// Money is audio track 15339.
func Money() media.Audio {
	return media.Audio{
		Item:        media.Item{ID: "15339", Title: "Money", Year: media.Ptr(1973)},
		AlbumArtist: "Pink Floyd",
		Album:       "The Dark Side Of The Moon",
		TrackNumber: 6,
		Duration:    media.HMS(0, 6, 22),
	}
}

// LocomotiveManipulation is episode 24079.
func LocomotiveManipulation() media.TelevisionShow {
	return media.TelevisionShow{
		Item:            media.Item{ID: "24079", Title: "The Locomotive Manipulation", Year: media.Ptr(2014)},
		SeriesTitle:     "The Big Bang Theory",
		ContentRating:   "TV-14",
		Summary:         "Sheldon and Amy go on a trip to wine country with Howard and Bernadette; Penny and Leonard rush Raj's dog to the vet",
		Studio:          "CBS",
		Directors:       "Mark Cendrowski",
		Writers:         "Jim Reynolds - Steve Holland",
		Season:          7,
		Episode:         15,
		Rating:          media.Ptr(7.8),
		OriginallyAired: date(2014, time.February, 6),
		Duration:        media.HMS(0, 20, 1),
	}
}

// Dataset returns a fresh copy of the fixture.
func Dataset() sample.Dataset {
	return sample.Dataset{
		Movies: []media.Movie{
			StarTrekII(),
			{
				Item:           media.Item{ID: "2601", Title: "Star Trek: First Contact", Year: media.Ptr(1996)},
				Studio:         "Paramount Pictures",
				ContentRating:  "PG-13",
				Summary:        "The Borg travel back in time to stop humanity's first contact with an alien race.",
				Genres:         "Sci-Fi - Action",
				Tagline:        "Resistance is futile.",
				Directors:      "Jonathan Frakes",
				Roles:          "Patrick Stewart - Jonathan Frakes",
				Duration:       media.HMS(1, 51, 0),
				CriticsRating:  media.Ptr(9.2),
				AudienceRating: media.Ptr(8.6),
				ReleaseDate:    date(1996, time.November, 22),
			},
			{
				Item:           media.Item{ID: "3120", Title: "Galaxy Quest", Year: media.Ptr(1999)},
				Studio:         "DreamWorks",
				ContentRating:  "PG",
				Summary:        "The cast of a cult space series modelled on Star Trek is drafted into a real interstellar war.",
				Genres:         "Comedy - Sci-Fi",
				Tagline:        "Never give up, never surrender.",
				Directors:      "Dean Parisot",
				Roles:          "Tim Allen - Sigourney Weaver",
				Duration:       media.HMS(1, 42, 0),
				CriticsRating:  media.Ptr(9.0),
				AudienceRating: media.Ptr(8.0),
				ReleaseDate:    date(1999, time.December, 25),
			},
			{
				Item:          media.Item{ID: "4001", Title: "Alien", Year: media.Ptr(1979)},
				Studio:        "20th Century Fox",
				ContentRating: "R",
				Summary:       "The crew of a commercial spacecraft answers a distress call.",
				Genres:        "Horror - Sci-Fi",
				Tagline:       "In space no one can hear you scream.",
				Directors:     "Ridley Scott",
				Roles:         "Sigourney Weaver - Tom Skerritt",
				Duration:      media.HMS(1, 57, 0),
			},
		},
		Audio: []media.Audio{
			Money(),
			track("15337", "Time", "Pink Floyd", "The Dark Side Of The Moon", nil, 4, media.HMS(0, 6, 53), media.Ptr(1973)),
			track("20101", "Black Cow", "Steely Dan", "Aja", nil, 1, media.HMS(0, 5, 10), media.Ptr(1977)),
			track("20102", "Aja", "Steely Dan", "Aja", nil, 2, media.HMS(0, 7, 57), media.Ptr(1977)),
			track("20103", "Deacon Blues", "Steely Dan", "Aja", nil, 3, media.HMS(0, 7, 37), media.Ptr(1977)),
			track("30001", "Wish You Were Here", "Various Artists", "Best Of The 70s", media.Ptr("Pink Floyd"), 9, media.HMS(0, 5, 34), nil),
			track("30002", "Peg", "Various Artists", "Aja Live", media.Ptr("Steely Dan"), 2, media.HMS(0, 4, 0), nil),
		},
		Shows: []media.TelevisionShow{
			LocomotiveManipulation(),
			{
				Item:            media.Item{ID: "5001", Title: "Happy Birthday Louisa", Year: media.Ptr(2007)},
				SeriesTitle:     "Doc Martin",
				ContentRating:   "TV-PG",
				Summary:         "Martin prepares for a dinner date with Louisa.",
				Studio:          "ITV",
				Directors:       "Ben Bolt",
				Writers:         "Dominic Minghella",
				Season:          3,
				Episode:         1,
				Rating:          media.Ptr(8.0),
				OriginallyAired: date(2007, time.September, 17),
				Duration:        media.HMS(0, 47, 0),
			},
			{
				Item:          media.Item{ID: "5002", Title: "The Admirer", Year: media.Ptr(2007)},
				SeriesTitle:   "Doc Martin",
				ContentRating: "TV-PG",
				Summary:       "A patient develops an unhealthy fixation on the doctor.",
				Studio:        "ITV",
				Directors:     "Ben Bolt",
				Writers:       "Jack Lothian",
				Season:        3,
				Episode:       2,
				Duration:      media.HMS(0, 47, 0),
			},
			{
				Item:            media.Item{ID: "5010", Title: "Uneasy Lies the Head", Year: media.Ptr(2009)},
				SeriesTitle:     "Doc Martin",
				ContentRating:   "TV-PG",
				Summary:         "Martin's fear of blood returns.",
				Studio:          "ITV",
				Directors:       "Ben Bolt",
				Writers:         "Jack Lothian",
				Season:          4,
				Episode:         1,
				Rating:          media.Ptr(8.1),
				OriginallyAired: date(2009, time.September, 20),
				Duration:        media.HMS(0, 47, 0),
			},
			{
				Item:            media.Item{ID: "6001", Title: "Hi Diddle Riddle", Year: media.Ptr(1966)},
				SeriesTitle:     "Batman",
				ContentRating:   "TV-G",
				Summary:         "The Riddler frames Batman for false arrest.",
				Studio:          "ABC",
				Directors:       "Robert Butler",
				Writers:         "Lorenzo Semple Jr.",
				Season:          1,
				Episode:         1,
				Rating:          media.Ptr(7.5),
				OriginallyAired: date(1966, time.January, 12),
				Duration:        media.HMS(0, 25, 0),
			},
			{
				Item:            media.Item{ID: "6002", Title: "Smack in the Middle", Year: media.Ptr(1966)},
				SeriesTitle:     "batman",
				ContentRating:   "TV-G",
				Summary:         "Robin is kidnapped by the Riddler.",
				Studio:          "ABC",
				Directors:       "Robert Butler",
				Writers:         "Lorenzo Semple Jr.",
				Season:          1,
				Episode:         2,
				Rating:          media.Ptr(7.4),
				OriginallyAired: date(1966, time.January, 13),
				Duration:        media.HMS(0, 25, 0),
			},
			{
				Item:            media.Item{ID: "7001", Title: "Pilot", Year: media.Ptr(1972)},
				SeriesTitle:     "M*A*S*H",
				ContentRating:   "TV-PG",
				Summary:         "Hawkeye and Trapper raffle off a weekend in Tokyo, with a nurse as the prize.",
				Studio:          "CBS",
				Directors:       "Gene Reynolds",
				Writers:         "Larry Gelbart",
				Season:          1,
				Episode:         1,
				Rating:          media.Ptr(8.0),
				OriginallyAired: date(1972, time.September, 17),
				Duration:        media.HMS(0, 25, 0),
			},
			{
				Item:          media.Item{ID: "8001", Title: "Behind the Cowl", Year: media.Ptr(0)},
				SeriesTitle:   "Making Of",
				ContentRating: "N/A",
				Summary:       "A look at how Batman was brought to television.",
			},
		},
	}
}

func track(id, title, albumArtist, album string, artist *string, number int, d media.Duration, year *int) media.Audio {
	return media.Audio{
		Item:        media.Item{ID: id, Title: title, Year: year},
		AlbumArtist: albumArtist,
		Album:       album,
		Artist:      artist,
		TrackNumber: number,
		Duration:    d,
	}
}
