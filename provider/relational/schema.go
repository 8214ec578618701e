package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/drblury/mediacatalog/internal/media"
	"github.com/drblury/mediacatalog/internal/sample"
)

// Schema creates the three media tables. Dates are DATE columns, durations
// whole seconds. It is valid for both PostgreSQL and SQLite.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		year_released INTEGER,
		studio TEXT NOT NULL DEFAULT '',
		content_rating TEXT NOT NULL DEFAULT '',
		critics_rating DOUBLE PRECISION,
		audience_rating DOUBLE PRECISION,
		summary TEXT NOT NULL DEFAULT '',
		released DATE,
		genres TEXT NOT NULL DEFAULT '',
		tagline TEXT NOT NULL DEFAULT '',
		duration BIGINT NOT NULL DEFAULT 0,
		directors TEXT NOT NULL DEFAULT '',
		roles TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS audio (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		year_released INTEGER,
		album_artist TEXT NOT NULL DEFAULT '',
		album TEXT NOT NULL DEFAULT '',
		artist TEXT,
		track_number INTEGER NOT NULL DEFAULT 0,
		duration BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS tv_shows (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		year_released INTEGER,
		series_title TEXT NOT NULL DEFAULT '',
		season INTEGER NOT NULL DEFAULT 0,
		episode INTEGER NOT NULL DEFAULT 0,
		content_rating TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		rating DOUBLE PRECISION,
		studio TEXT NOT NULL DEFAULT '',
		originally_aired DATE,
		duration BIGINT NOT NULL DEFAULT 0,
		directors TEXT NOT NULL DEFAULT '',
		writers TEXT NOT NULL DEFAULT ''
	)`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Counts holds the number of rows per table.
type Counts struct {
	Movies int
	Audio  int
	Shows  int
}

// Total returns the number of rows across all tables.
func (c Counts) Total() int { return c.Movies + c.Audio + c.Shows }

// Count returns the row count of every media table.
func Count(ctx context.Context, db *sql.DB) (Counts, error) {
	var c Counts
	for table, dest := range map[string]*int{"movies": &c.Movies, "audio": &c.Audio, "tv_shows": &c.Shows} {
		if err := db.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(dest); err != nil {
			return Counts{}, fmt.Errorf("failed to count %s: %w", table, err)
		}
	}
	return c, nil
}

const (
	insertMovie = `INSERT INTO movies (` + movieColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	insertAudio = `INSERT INTO audio (` + audioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	insertShow = `INSERT INTO tv_shows (` + showColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
)

// Seed inserts ds in a single transaction. Existing rows are left alone; an
// id that is already present fails the whole seed.
func Seed(ctx context.Context, db *sql.DB, ds sample.Dataset) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	if err = insertAll(ctx, tx, insertMovie, ds.Movies, movieArgs); err != nil {
		return fmt.Errorf("failed to seed movies: %w", err)
	}
	if err = insertAll(ctx, tx, insertAudio, ds.Audio, audioArgs); err != nil {
		return fmt.Errorf("failed to seed audio: %w", err)
	}
	if err = insertAll(ctx, tx, insertShow, ds.Shows, showArgs); err != nil {
		return fmt.Errorf("failed to seed tv shows: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func insertAll[T media.Entry](ctx context.Context, tx *sql.Tx, stmt string, items []T, args func(T) []any) error {
	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return err
	}
	defer prepared.Close()

	for _, item := range items {
		if _, err := prepared.ExecContext(ctx, args(item)...); err != nil {
			return fmt.Errorf("id %s: %w", item.Base().ID, err)
		}
	}
	return nil
}

func movieArgs(m media.Movie) []any {
	return []any{m.ID, m.Title, nullInt(m.Year), m.Studio, m.ContentRating, nullFloat(m.CriticsRating),
		nullFloat(m.AudienceRating), m.Summary, nullDate(m.ReleaseDate), m.Genres, m.Tagline,
		toSeconds(m.Duration), m.Directors, m.Roles}
}

func audioArgs(a media.Audio) []any {
	var artist sql.NullString
	if a.Artist != nil {
		artist = sql.NullString{String: *a.Artist, Valid: true}
	}
	return []any{a.ID, a.Title, nullInt(a.Year), a.AlbumArtist, a.Album, artist, a.TrackNumber, toSeconds(a.Duration)}
}

func showArgs(s media.TelevisionShow) []any {
	return []any{s.ID, s.Title, nullInt(s.Year), s.SeriesTitle, s.Season, s.Episode, s.ContentRating,
		s.Summary, nullFloat(s.Rating), s.Studio, nullDate(s.OriginallyAired), toSeconds(s.Duration),
		s.Directors, s.Writers}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullDate(v *media.Date) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.Time(), Valid: true}
}

func toSeconds(d media.Duration) int64 {
	return int64(d.Std() / time.Second)
}
