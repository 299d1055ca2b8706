package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync/atomic"

	sqlite3 "github.com/mattn/go-sqlite3"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (triples table + indexes)
const currentSchemaVersion = 1

// driverName is the sqlite3 driver with the Danish collation installed on
// every connection.
const driverName = "sqlite3_dannet"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// One collator per connection; a collate.Collator is not
			// safe for concurrent use.
			c := collate.New(language.Danish)
			return conn.RegisterCollation("DA_COLLATE", func(a, b string) int {
				return c.CompareString(a, b)
			})
		},
	})
}

// Store is a handle to the SQLite triple store.
//
// A Store opened with OpenReadOnly rejects every write at the SQLite level.
// A Store opened with Open is writable and is used only by import tooling.
type Store struct {
	db       *sql.DB
	readOnly bool

	// openReads counts currently open read transactions. Tests use it to
	// assert that every transaction is released on every exit path.
	openReads atomic.Int64
}

// Open creates or opens a writable store at the given path, applying
// pragmas and schema migrations. Used by import tooling, never by the
// gateway.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY churn during import.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing store for reading only.
//
// Read-only access is structural, not conventional: the database file is
// opened with mode=ro and every connection is pinned with PRAGMA
// query_only, so INSERT/UPDATE/DELETE/DDL on this handle fail loudly no
// matter what SQL reaches it.
func OpenReadOnly(path string) (*Store, error) {
	// query_only and busy_timeout live in the DSN so the driver applies
	// them to every pooled connection, not just whichever one a db.Exec
	// happens to run on.
	db, err := sql.Open(driverName, "file:"+path+"?mode=ro&_query_only=true&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database read-only: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Multiple reader connections; WAL keeps them from blocking each other.
	db.SetMaxOpenConns(4)

	return &Store{db: db, readOnly: true}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReadOnly reports whether this handle rejects writes.
func (s *Store) ReadOnly() bool {
	return s.readOnly
}

// OpenReadTxns returns the number of currently open read transactions.
func (s *Store) OpenReadTxns() int64 {
	return s.openReads.Load()
}

// applyPragmas sets the SQLite configuration for a writable handle.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and records the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
