package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drblury/mediacatalog/internal/runtime/logging"
	"github.com/drblury/mediacatalog/internal/sample"
	"github.com/drblury/mediacatalog/provider/relational"
)

func newSeedCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the CSV dataset into a relational database",
		Long: `Create the movies, audio and tv_shows tables when missing and insert the
dataset. The backend must be postgres or sqlite, and the tables must be empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := s.load(cmd)
			if err != nil {
				return err
			}
			log, err := s.logger(cmd, cfg)
			if err != nil {
				return err
			}
			if cfg.DatasetDir == "" {
				return fmt.Errorf("seed: --dataset is required")
			}

			db, err := openRelational(cfg.GetBackend(), cfg.PostgresURL, cfg.SQLiteFile)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if err := relational.Migrate(ctx, db); err != nil {
				return err
			}
			existing, err := relational.Count(ctx, db)
			if err != nil {
				return err
			}
			if existing.Total() > 0 {
				return fmt.Errorf("seed: database already holds %d movies, %d audio tracks and %d episodes",
					existing.Movies, existing.Audio, existing.Shows)
			}

			ds, err := sample.LoadDir(cfg.DatasetDir)
			if err != nil {
				return err
			}
			if err := relational.Seed(ctx, db, ds); err != nil {
				return err
			}
			log.Info("Seeded catalog database", logging.LogFields{
				"backend": cfg.GetBackend(),
				"movies":  len(ds.Movies),
				"audio":   len(ds.Audio),
				"shows":   len(ds.Shows),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d movies, %d audio tracks, %d episodes\n",
				len(ds.Movies), len(ds.Audio), len(ds.Shows))
			return nil
		},
	}
}

func openRelational(backend, postgresURL, sqliteFile string) (*sql.DB, error) {
	switch backend {
	case relational.PostgresName, "postgresql":
		if postgresURL == "" {
			return nil, fmt.Errorf("seed: --postgres-url is required for %s", backend)
		}
		db, err := sql.Open("postgres", postgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
		}
		return db, nil
	case relational.SQLiteName:
		if sqliteFile == "" {
			sqliteFile = relational.DefaultSQLiteFile
		}
		return relational.OpenSQLite(sqliteFile)
	}
	return nil, fmt.Errorf("seed: backend %q is not relational, use postgres or sqlite", backend)
}
