package relational

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	_ "github.com/lib/pq" // PostgreSQL driver

	rterrors "github.com/drblury/mediacatalog/internal/runtime/errors"
	"github.com/drblury/mediacatalog/internal/sample"
	"github.com/drblury/mediacatalog/internal/stream"
	"github.com/drblury/mediacatalog/provider"
)

// PostgresName is the name used to register the PostgreSQL provider.
const PostgresName = "postgres"

// Connection pool defaults for PostgreSQL.
const (
	DefaultMaxOpenConns = 10
	DefaultMaxIdleConns = 5
)

func init() {
	provider.RegisterWithCapabilities(PostgresName, BuildPostgres, provider.PostgresCapabilities)
	provider.RegisterWithCapabilities("postgresql", BuildPostgres, provider.PostgresCapabilities) // Alias
}

// BuildPostgres connects to cfg.GetPostgresURL, creates the schema and, when a
// dataset directory is configured and the tables are empty, seeds them.
func BuildPostgres(ctx context.Context, cfg provider.Config, logger watermill.LoggerAdapter) (provider.Provider, error) {
	url := cfg.GetPostgresURL()
	if url == "" {
		return provider.Provider{}, fmt.Errorf("PostgreSQL connection string is required")
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		return provider.Provider{}, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)

	return finishBuild(ctx, db, cfg, logger, PostgresName)
}

// finishBuild pings db, migrates and optionally seeds it, and wraps it as a provider.
func finishBuild(ctx context.Context, db *sql.DB, cfg provider.Config, logger watermill.LoggerAdapter, name string) (provider.Provider, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return provider.Provider{}, rterrors.Unavailable(name, err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return provider.Provider{}, err
	}
	if err := seedIfEmpty(ctx, db, cfg.GetDatasetDir(), logger); err != nil {
		_ = db.Close()
		return provider.Provider{}, err
	}

	pool := stream.NewPool(cfg.GetProducerConcurrency())
	return provider.Provider{
		Catalog: NewNamed(name, db, provider.StreamOptions(cfg, pool)...),
		Closer:  db,
	}, nil
}

// DatasetLoader reads the dataset used to seed an empty database.
var DatasetLoader = sample.LoadDir

func seedIfEmpty(ctx context.Context, db *sql.DB, dir string, logger watermill.LoggerAdapter) error {
	if dir == "" {
		return nil
	}
	counts, err := Count(ctx, db)
	if err != nil {
		return err
	}
	if counts.Total() > 0 {
		logger.Debug("Database already populated, skipping seed", watermill.LogFields{
			"movies": counts.Movies,
			"audio":  counts.Audio,
			"shows":  counts.Shows,
		})
		return nil
	}
	ds, err := DatasetLoader(dir)
	if err != nil {
		return err
	}
	if err := Seed(ctx, db, ds); err != nil {
		return err
	}
	logger.Info("Seeded database from dataset", watermill.LogFields{
		"dir":    dir,
		"movies": len(ds.Movies),
		"audio":  len(ds.Audio),
		"shows":  len(ds.Shows),
	})
	return nil
}
