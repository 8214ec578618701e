package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/mediacatalog/internal/media"
	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/runtime/jsoncodec"
	"github.com/drblury/mediacatalog/internal/sample/sampletest"
)

const datasetDir = "../../internal/sample/testdata"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func lines(out string) []string {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestSeedThenQuerySQLite(t *testing.T) {
	file := filepath.Join(t.TempDir(), "catalog.db")

	out, err := execute(t, "seed", "--backend", "sqlite", "--sqlite-file", file, "--dataset", datasetDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 4 movies")

	_, err = execute(t, "seed", "--backend", "sqlite", "--sqlite-file", file, "--dataset", datasetDir, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already holds")

	out, err = execute(t, "query", "get_movies", "--backend", "sqlite", "--sqlite-file", file, "--log-level", "error")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, sampletest.MovieCount)

	var movie media.Movie
	require.NoError(t, jsoncodec.UnmarshalString(got[0], &movie))
	assert.NotEmpty(t, movie.Title)
}

func TestSeedRejectsNonRelationalBackend(t *testing.T) {
	_, err := execute(t, "seed", "--backend", "memory", "--dataset", datasetDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not relational")

	_, err = execute(t, "seed", "--backend", "sqlite", "--sqlite-file", filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--dataset is required")
}

func TestQueryMemory(t *testing.T) {
	out, err := execute(t, "query", "search_movies", "star trek", "--dataset", datasetDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Len(t, lines(out), sampletest.StarTrekMatches)

	out, err = execute(t, "query", "GET_EPISODES", "Doc Martin", "3", "--dataset", datasetDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Len(t, lines(out), sampletest.DocMartinSeason3)
}

func TestQueryErrors(t *testing.T) {
	_, err := execute(t, "query", "get_everything", "--dataset", datasetDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")

	_, err = execute(t, "query", "search_movies", "--dataset", datasetDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes 1 argument")

	_, err = execute(t, "query", "get_episodes", "Doc Martin", "three", "--dataset", datasetDir, "--log-level", "error")
	require.Error(t, err)
	var malformed *rterrors.MalformedRequestError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "season", malformed.Param)
}

func TestSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: sqlite\nrest_port: 8100\nlog_level: debug\n"), 0o600))
	t.Setenv("MEDIACATALOG_REST_PORT", "8200")

	cmd, s := newRoot()
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	require.NoError(t, serve.ParseFlags([]string{"--config", path, "--log-level", "warn"}))

	cfg, err := s.load(serve)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, 8200, cfg.RESTPort)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mediacatalog dev")
}
