package rest_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/mediacatalog/internal/catalog"
	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/runtime/ids"
	"github.com/drblury/mediacatalog/internal/runtime/jsoncodec"
	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/runtime/resources"
	"github.com/drblury/mediacatalog/internal/routes"
	"github.com/drblury/mediacatalog/internal/sample/sampletest"
	"github.com/drblury/mediacatalog/internal/server/rest"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/internal/transcode"
	"github.com/drblury/mediacatalog/provider"
	"github.com/drblury/mediacatalog/provider/memory"
	"github.com/drblury/mediacatalog/provider/providertest"
)

func newServer(t *testing.T, c catalog.Catalog) *rest.Server {
	t.Helper()
	srv, err := rest.New(rest.Options{
		Catalog:      c,
		Logger:       logging.NewDiscardLogger(),
		Capabilities: provider.MemoryCapabilities,
	})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) []T {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out []T
	require.NoError(t, jsoncodec.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func events(t *testing.T, body io.Reader) []transcode.Event {
	t.Helper()
	r := transcode.NewEventReader(body)
	var out []transcode.Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
}

func TestNewValidates(t *testing.T) {
	_, err := rest.New(rest.Options{Logger: logging.NewDiscardLogger()})
	assert.ErrorIs(t, err, rterrors.ErrCatalogRequired)

	_, err = rest.New(rest.Options{Catalog: memory.New(sampletest.Dataset())})
	assert.ErrorIs(t, err, rterrors.ErrLoggerRequired)
}

func TestBufferedRoutes(t *testing.T) {
	srv := newServer(t, memory.New(sampletest.Dataset()))

	movies := decode[media.Movie](t, get(t, srv, "/media/movies"))
	assert.Len(t, movies, sampletest.MovieCount)
	assert.Equal(t, sampletest.StarTrekII(), movies[0])

	assert.Len(t, decode[media.Movie](t, get(t, srv, "/media/movies/search/"+url.PathEscape("star trek"))), sampletest.StarTrekMatches)
	assert.Len(t, decode[media.Audio](t, get(t, srv, "/media/audio")), sampletest.AudioCount)
	assert.Len(t, decode[media.Audio](t, get(t, srv, "/media/audio/search/"+url.PathEscape("Pink Floyd"))), sampletest.PinkFloydMatches)
	assert.Len(t, decode[media.Audio](t, get(t, srv, "/media/audio/tracks/aja")), sampletest.AjaTracks)
	assert.Len(t, decode[media.TelevisionShow](t, get(t, srv, "/media/shows")), sampletest.ShowCount)
	assert.Len(t, decode[media.TelevisionShow](t, get(t, srv, "/media/shows/search/hawkeye")), sampletest.HawkeyeMatches)
	assert.Len(t, decode[media.TelevisionShow](t, get(t, srv, "/media/shows/series/batman")), sampletest.BatmanSeries)
	assert.Len(t, decode[media.TelevisionShow](t, get(t, srv, "/media/shows/series/"+url.PathEscape("Doc Martin")+"/3")), sampletest.DocMartinSeason3)
}

func TestBufferedEmptyResultIsEmptyArray(t *testing.T) {
	srv := newServer(t, memory.New(sampletest.Dataset()))
	rec := get(t, srv, "/media/audio/tracks/nothing-here")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestBufferedFailureIsBadRequestWithCause(t *testing.T) {
	cause := rterrors.Unavailable("postgres", errors.New("pq: password authentication failed for user \"media\""))
	srv := newServer(t, &providertest.Failing{Data: sampletest.Dataset(), After: 2, Err: cause})

	rec := get(t, srv, "/media/movies")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, cause.Error(), rec.Body.String())
}

func TestMalformedSeason(t *testing.T) {
	srv := newServer(t, memory.New(sampletest.Dataset()))

	rec := get(t, srv, "/media/shows/series/batman/three")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `invalid season "three"`)

	rec = get(t, srv, "/media/stream/shows/series/batman/three")
	evs := events(t, rec.Body)
	require.Len(t, evs, 1)
	assert.Equal(t, transcode.ErrorMarkerID, evs[0].ID)
	assert.Contains(t, evs[0].Data, `invalid season "three"`)
}

func TestMalformedSeasonIsObserved(t *testing.T) {
	metrics := catalog.NewMetrics(prometheus.NewRegistry())
	inst, err := catalog.NewInstrumented(memory.New(sampletest.Dataset()), catalog.InstrumentOptions{
		Provider: provider.MemoryCapabilities.Name,
		Logger:   logging.NewDiscardLogger(),
		Recorder: metrics,
	})
	require.NoError(t, err)
	srv := newServer(t, inst)

	rec := get(t, srv, "/media/shows/series/doc%20martin/three")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	stats := metrics.Stats(provider.MemoryCapabilities.Name, catalog.OpEpisodes)
	require.NotNil(t, stats)
	assert.Equal(t, uint64(1), stats.Calls)
	assert.Equal(t, uint64(1), stats.Failures)
	assert.Equal(t, catalog.OutcomeError, stats.LastOutcome)

	rec = get(t, srv, "/media/shows/series/doc%20martin/3")
	assert.Equal(t, http.StatusOK, rec.Code)
	stats = metrics.Stats(provider.MemoryCapabilities.Name, catalog.OpEpisodes)
	assert.Equal(t, uint64(2), stats.Calls)
	assert.Equal(t, uint64(1), stats.Failures)
	assert.Equal(t, uint64(sampletest.DocMartinSeason3), stats.Items)
}

type searchCapture struct {
	catalog.Catalog
	texts []string
}

func (c *searchCapture) SearchMovies(ctx context.Context, text string) stream.Stream[media.Movie] {
	c.texts = append(c.texts, text)
	return c.Catalog.SearchMovies(ctx, text)
}

func TestPathParamsDecodedOnce(t *testing.T) {
	c := &searchCapture{Catalog: memory.New(sampletest.Dataset())}
	srv := newServer(t, c)

	for _, target := range []string{
		"/media/movies/search/100%25",
		"/media/movies/search/%2541",
		"/media/movies/search/star%20trek",
		"/media/movies/search/a%2Fb",
	} {
		rec := get(t, srv, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
	assert.Equal(t, []string{"100%", "%41", "star trek", "a/b"}, c.texts)
}

func TestStreamRoutes(t *testing.T) {
	ds := sampletest.Dataset()
	srv := newServer(t, memory.New(ds))

	rec := get(t, srv, "/media/stream/audio")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	evs := events(t, rec.Body)
	require.Len(t, evs, sampletest.AudioCount+1)
	for i, ev := range evs[:sampletest.AudioCount] {
		assert.Equal(t, string(media.KindAudio), ev.Name)
		assert.Equal(t, ds.Audio[i].ID, ev.ID)
		assert.Equal(t, ds.Audio[i].Title, ev.Comment)

		var item media.Audio
		require.NoError(t, jsoncodec.UnmarshalString(ev.Data, &item))
		assert.Equal(t, ds.Audio[i], item)
	}
	last := evs[len(evs)-1]
	assert.Equal(t, transcode.EndOfStreamID, last.ID)
	assert.Equal(t, transcode.EndOfStreamComment, last.Comment)

	evs = events(t, get(t, srv, "/media/stream/shows/series/"+url.PathEscape("doc martin")+"/3").Body)
	assert.Len(t, evs, sampletest.DocMartinSeason3+1)
}

func TestStreamFailureEndsWithErrorMarker(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.7:50051: connect: connection refused")
	srv := newServer(t, &providertest.Failing{Data: sampletest.Dataset(), After: 3, Err: cause})

	evs := events(t, get(t, srv, "/media/stream/shows").Body)
	require.Len(t, evs, 4)
	last := evs[3]
	assert.Equal(t, transcode.ErrorMarkerID, last.ID)
	assert.Equal(t, transcode.ErrorComment, last.Comment)
	assert.Equal(t, cause.Error(), last.Data)
	for _, ev := range evs {
		assert.NotEqual(t, transcode.EndOfStreamID, ev.ID)
	}
}

func TestStreamIDHeader(t *testing.T) {
	srv := newServer(t, memory.New(sampletest.Dataset()))

	rec := get(t, srv, "/media/movies")
	generated := rec.Header().Get(rest.StreamIDHeader)
	_, err := ids.StartedAt(generated)
	require.NoError(t, err)

	id := ids.NewStreamID()
	req := httptest.NewRequest(http.MethodGet, "/media/stream/movies", nil)
	req.Header.Set(rest.StreamIDHeader, id)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(rest.StreamIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/media/movies", nil)
	req.Header.Set(rest.StreamIDHeader, "not-a-ulid")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-ulid", rec.Header().Get(rest.StreamIDHeader))
}

func TestCustomPaths(t *testing.T) {
	srv, err := rest.New(rest.Options{
		Catalog: memory.New(sampletest.Dataset()),
		Logger:  logging.NewDiscardLogger(),
		Paths:   routes.Paths{Root: "/api/", Stream: "sse", Shows: "tv"},
	})
	require.NoError(t, err)

	assert.Len(t, decode[media.TelevisionShow](t, get(t, srv, "/api/tv")), sampletest.ShowCount)
	evs := events(t, get(t, srv, "/api/sse/movies").Body)
	assert.Len(t, evs, sampletest.MovieCount+1)
	assert.Equal(t, http.StatusNotFound, get(t, srv, "/media/movies").Code)
}

func TestHealthAndOperations(t *testing.T) {
	metrics := catalog.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, metrics.Register())
	inst, err := catalog.NewInstrumented(memory.New(sampletest.Dataset()), catalog.InstrumentOptions{
		Provider: provider.MemoryCapabilities.Name,
		Logger:   logging.NewDiscardLogger(),
		Recorder: metrics,
	})
	require.NoError(t, err)

	srv, err := rest.New(rest.Options{
		Catalog:      inst,
		Logger:       logging.NewDiscardLogger(),
		Capabilities: provider.MemoryCapabilities,
		Metrics:      metrics,
		Resources:    resources.NewTracker(),
	})
	require.NoError(t, err)

	rec := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var health rest.Health
	require.NoError(t, jsoncodec.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, provider.MemoryCapabilities, health.Provider)
	require.NotNil(t, health.Resources)
	assert.Positive(t, health.Resources.Goroutines)

	decode[media.Movie](t, get(t, srv, "/media/movies"))

	ops := decode[rest.OperationInfo](t, get(t, srv, "/operations"))
	require.Len(t, ops, len(catalog.Operations()))
	assert.Equal(t, "get_movies", ops[0].Name)
	assert.Equal(t, "/media/movies", ops[0].Path)
	assert.Equal(t, "/media/stream/movies", ops[0].StreamPath)
	require.NotNil(t, ops[0].Stats)
	assert.Equal(t, uint64(1), ops[0].Stats.Calls)
	assert.Equal(t, uint64(sampletest.MovieCount), ops[0].Stats.Items)
	assert.Nil(t, ops[1].Stats)
}

func TestCORS(t *testing.T) {
	srv, err := rest.New(rest.Options{
		Catalog:        memory.New(sampletest.Dataset()),
		Logger:         logging.NewDiscardLogger(),
		AllowedOrigins: []string{"https://player.example.com"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/media/stream/movies", nil)
	req.Header.Set("Origin", "https://player.example.com")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "https://player.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/media/movies", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
