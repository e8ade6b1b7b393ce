// Package sqlite implements storage.Store on an embedded SQLite database.
//
// The database is a derived cache: the JSONL document file is the source of
// truth and RebuildFromJSONL regenerates every table from it. Crowd-asserted
// edges are written through AppendEdge and mirrored to the JSONL file by the
// caller.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/helioweb/helioweb/internal/logger"
	"github.com/helioweb/helioweb/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Store is a SQLite backed storage.Store.
type Store struct {
	stbl   sq.StatementBuilderType
	db     *sql.DB
	logger logger.Logger
}

var _ storage.Store = (*Store)(nil)

// PrepareDSN turns a path or file URI into a DSN, adding defaults for the
// journal mode, busy timeout, foreign key enforcement and transaction mode
// unless the caller set them.
func PrepareDSN(uri string) (string, error) {
	query := url.Values{}
	var err error

	if i := strings.Index(uri, "?"); i != -1 {
		query, err = url.ParseQuery(uri[i+1:])
		if err != nil {
			return uri, fmt.Errorf("error parsing dsn: %w", err)
		}

		uri = uri[:i]
	}

	foundJournalMode := false
	foundBusyTimeout := false
	foundForeignKeys := false
	for _, val := range query["_pragma"] {
		switch {
		case strings.HasPrefix(val, "journal_mode"):
			foundJournalMode = true
		case strings.HasPrefix(val, "busy_timeout"):
			foundBusyTimeout = true
		case strings.HasPrefix(val, "foreign_keys"):
			foundForeignKeys = true
		}
	}

	if !foundJournalMode {
		query.Add("_pragma", "journal_mode(WAL)")
	}
	if !foundBusyTimeout {
		query.Add("_pragma", "busy_timeout(5000)")
	}
	if !foundForeignKeys {
		query.Add("_pragma", "foreign_keys(1)")
	}

	if !query.Has("_txlock") {
		query.Set("_txlock", "immediate")
	}

	uri += "?" + query.Encode()

	return uri, nil
}

// Open opens (creating if needed) the database at path and brings its schema
// up to date.
func Open(path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNoopLogger()
	}

	dsn, err := PrepareDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite connection: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 5 * time.Second
	attempt := 1
	err = backoff.Retry(func() error {
		err := db.PingContext(context.Background())
		if err != nil {
			log.Info("waiting for sqlite", zap.Int("attempt", attempt), zap.Error(err))
			attempt++
		}
		return err
	}, policy)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite connection: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		stbl:   sq.StatementBuilder.RunWith(db),
		db:     db,
		logger: log,
	}, nil
}

func migrate(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HandleSQLError maps driver errors to storage errors. A constraint violation
// means a referenced document does not exist, since the only constraint a
// write can break is the edge owner foreign key.
func HandleSQLError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code()&0xFF == sqlite3.SQLITE_CONSTRAINT {
			return storage.ErrNotFound
		}
	}

	return fmt.Errorf("sql error: %w", err)
}
