package relational

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/drblury/mediacatalog/provider"
)

// SQLiteName is the name used to register the SQLite provider.
const SQLiteName = "sqlite"

// DefaultSQLiteFile is used when no file is configured.
const DefaultSQLiteFile = "mediacatalog.db"

// MemoryFile selects a private in-memory database.
const MemoryFile = ":memory:"

func init() {
	provider.RegisterWithCapabilities(SQLiteName, BuildSQLite, provider.SQLiteCapabilities)
}

// BuildSQLite opens cfg.GetSQLiteFile, creates the schema and seeds it from
// the dataset directory when the tables are empty.
func BuildSQLite(ctx context.Context, cfg provider.Config, logger watermill.LoggerAdapter) (provider.Provider, error) {
	file := cfg.GetSQLiteFile()
	if file == "" {
		file = DefaultSQLiteFile
	}
	db, err := OpenSQLite(file)
	if err != nil {
		return provider.Provider{}, err
	}
	return finishBuild(ctx, db, cfg, logger, SQLiteName)
}

// OpenSQLite opens a SQLite database in WAL mode. MemoryFile and names of the
// form "file:name?mode=memory" open a shared-cache in-memory database that
// lives as long as the returned handle.
func OpenSQLite(file string) (*sql.DB, error) {
	dsn := file
	inMemory := false
	switch {
	case file == MemoryFile:
		dsn = "file:mediacatalog?mode=memory&cache=shared"
		inMemory = true
	case strings.Contains(file, "mode=memory"):
		inMemory = true
	default:
		dsn = file + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if inMemory {
		// The database is dropped when its last connection closes.
		db.SetMaxIdleConns(DefaultMaxIdleConns)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}
	return db, nil
}
