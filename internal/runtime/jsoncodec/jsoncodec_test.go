package jsoncodec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/mediacatalog/internal/media"
)

func TestMovieRoundTrip(t *testing.T) {
	released := media.Date{Year: 1982, Month: 6, Day: 3}
	in := media.Movie{
		Item:          media.Item{ID: "2588", Title: "Star Trek II: The Wrath of Khan", Year: media.Ptr(1982)},
		ContentRating: "PG",
		Duration:      media.HMS(1, 53, 1),
		CriticsRating: media.Ptr(8.8),
		ReleaseDate:   &released,
	}

	data, err := MarshalString(in)
	require.NoError(t, err)
	assert.Contains(t, data, `"id":"2588"`)
	assert.Contains(t, data, `"duration":"1h53m1s"`)
	assert.Contains(t, data, `"releaseDate":"1982-06-03"`)
	assert.NotContains(t, data, "audienceRating")

	var out media.Movie
	require.NoError(t, UnmarshalString(data, &out))
	assert.Equal(t, in, out)
}

func TestAudioArtistOmittedWhenAbsent(t *testing.T) {
	data, err := Marshal(media.Audio{Item: media.Item{ID: "15339", Title: "Money"}, Album: "The Dark Side Of The Moon"})
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "artist\":"), string(data))
	assert.Contains(t, string(data), `"albumArtist":""`)
}

func TestEncodeAndDecode(t *testing.T) {
	buf := &bytes.Buffer{}
	payload := []media.Item{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}

	require.NoError(t, Encode(buf, payload))

	var decoded []media.Item
	require.NoError(t, Decode(buf, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestUnmarshalRejectsBadDuration(t *testing.T) {
	var out media.Audio
	err := Unmarshal([]byte(`{"id":"1","title":"x","duration":"forever"}`), &out)
	assert.Error(t, err)
}
