// Package store persists enriched records to MySQL or SQLite, one run at a
// time, and verifies what was written.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/dbsmedya/movenrich/internal/config"
	"github.com/dbsmedya/movenrich/internal/logger"
	"github.com/dbsmedya/movenrich/internal/sqlutil"
)

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Connection retry policy for Open.
var (
	maxRetries     = 3
	initialBackoff = time.Second
)

// Store writes enriched records into a single table.
type Store struct {
	db        *sql.DB
	driver    string
	table     string
	batchSize int
	verify    VerificationMethod
	logger    *logger.Logger
}

// Open connects to the configured database with exponential backoff and
// returns a Store that owns the connection.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*Store, error) {
	db, err := connectWithRetry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s store: %w", cfg.Driver, err)
	}

	s, err := New(db, cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection. The caller keeps ownership of db until
// Close is called on the Store.
func New(db *sql.DB, cfg config.StoreConfig, log *logger.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if cfg.Driver != DriverMySQL && cfg.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
	if !sqlutil.IsValidIdentifier(cfg.Table) {
		return nil, &sqlutil.InvalidIdentifierError{Name: cfg.Table}
	}
	if log == nil {
		log = logger.NewNop()
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	// Keep each statement under SQLite's bound-variable limit.
	if maxRows := maxBindVars / len(recordColumns); batchSize > maxRows {
		batchSize = maxRows
	}

	method := VerificationMethod(cfg.Verify)
	if method == "" {
		method = MethodCount
	}

	return &Store{
		db:        db,
		driver:    cfg.Driver,
		table:     cfg.Table,
		batchSize: batchSize,
		verify:    method,
		logger:    log.WithFields(map[string]interface{}{"store": cfg.Driver, "table": cfg.Table}),
	}, nil
}

// connectWithRetry attempts to connect with exponential backoff.
func connectWithRetry(ctx context.Context, cfg config.StoreConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	backoff := initialBackoff

	for i := 0; i < maxRetries; i++ {
		db, err = connect(ctx, cfg)
		if err == nil {
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

func connect(ctx context.Context, cfg config.StoreConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case DriverMySQL:
		db, err := sql.Open("mysql", BuildDSN(cfg))
		if err != nil {
			return nil, err
		}
		if cfg.MaxConnections > 0 {
			db.SetMaxOpenConns(cfg.MaxConnections)
		}
		db.SetConnMaxLifetime(10 * time.Minute)
		return db, nil

	case DriverSQLite:
		db, err := sql.Open("sqlite", cfg.Path)
		if err != nil {
			return nil, err
		}
		// One writer; also keeps ":memory:" on a single connection.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg config.StoreConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	params := "?parseTime=true&charset=utf8mb4"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", s.driver, err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
