// Package index keeps an optional SQLite mirror of the notes tree.
//
// The mirror is derived data: the Markdown files stay authoritative and the
// queries never read from it. It exists for external tools and for
// `lab index stats`, and can always be rebuilt from a full walk.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// CurrentDBVersion is the schema version written to the meta table.
// A database with another version is dropped and recreated on open.
const CurrentDBVersion = 1

// ErrIndexLocked indicates another process is rebuilding the index.
var ErrIndexLocked = errors.New("index is locked for rebuild")

// Database is the SQLite database handle.
type Database struct {
	db   *sql.DB
	path string
}

// DB returns the underlying sql.DB for advanced queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Path returns the database file, or "" for an in-memory database.
func (d *Database) Path() string {
	return d.path
}

// Open opens or creates the database at path. An incompatible schema is
// discarded, since everything in it can be rebuilt from the notes.
func Open(path string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		compatible, err := checkVersion(path)
		if err != nil {
			return nil, err
		}
		if !compatible {
			if err := removeDatabaseFiles(path); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	d := &Database{db: db, path: path}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// OpenInMemory opens an in-memory database (for testing).
func OpenInMemory() (*Database, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		-- One row per project, idea, or experiment metadata file
		CREATE TABLE IF NOT EXISTS entities (
			path TEXT PRIMARY KEY,      -- root-relative metadata file
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			status TEXT,
			project TEXT,
			idea TEXT,
			tags TEXT NOT NULL DEFAULT '[]',
			priority TEXT,
			created TEXT,
			updated TEXT,
			file_mtime INTEGER,
			indexed_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entities_kind_status ON entities(kind, status);
		CREATE INDEX IF NOT EXISTS idx_entities_project ON entities(project);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	_, err := d.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		strconv.Itoa(CurrentDBVersion))
	if err != nil {
		return fmt.Errorf("failed to set database version: %w", err)
	}
	return nil
}

// checkVersion reports whether the database at path carries CurrentDBVersion.
func checkVersion(path string) (bool, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return false, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var version string
	err = db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&version)
	if err != nil {
		// Missing meta table or row: not ours, or too old.
		return false, nil
	}
	return version == strconv.Itoa(CurrentDBVersion), nil
}

func removeDatabaseFiles(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}
