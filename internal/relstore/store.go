// Package relstore is the relational half of CodeCompass's dual-store
// index: a sqlite database per project holding projects, jobs, branch
// state, symbol relations, files, imports, and the schema manifest.
package relstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Querier abstracts *sql.DB and *sql.Tx so Store methods work identically
// inside and outside a transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store wraps a sqlite connection for one project's relational data.
type Store struct {
	db     *sql.DB
	q      Querier // active querier: db or tx
	dbPath string
}

// Open opens or creates the sqlite database at dbPath, running schema
// migration. dbPath's parent directory must already exist.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: db, dbPath: dbPath}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenMemory opens an in-memory sqlite database, for tests.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	s := &Store{db: db, dbPath: ":memory:"}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// EnsureDir creates dir (and parents) with the permissions CodeCompass's
// per-project data directories use.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o750)
}

// DBPath returns the conventional sqlite path under a project data dir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "relstore.db")
}

// WithTransaction runs fn within a single sqlite transaction. fn receives
// a transaction-scoped Store; the receiver's own querier is never mutated,
// so concurrent read-only callers using s directly are unaffected.
func (s *Store) WithTransaction(fn func(tx *Store) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Store{db: s.db, q: tx, dbPath: s.dbPath}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for callers that need raw access.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		root_path TEXT NOT NULL,
		default_ref TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		state TEXT NOT NULL,
		ref TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER DEFAULT 0,
		error TEXT DEFAULT '',
		files_total INTEGER DEFAULT 0,
		files_done INTEGER DEFAULT 0,
		pid INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_project_state ON jobs(project_id, state);

	CREATE TABLE IF NOT EXISTS branch_state (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		ref TEXT NOT NULL,
		merge_base_commit TEXT DEFAULT '',
		last_indexed_commit TEXT NOT NULL,
		overlay_dir TEXT DEFAULT '',
		file_count INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL,
		last_accessed_at INTEGER NOT NULL,
		PRIMARY KEY (project_id, ref)
	);

	CREATE TABLE IF NOT EXISTS files (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		language TEXT NOT NULL,
		size_bytes INTEGER DEFAULT 0,
		indexed_at INTEGER NOT NULL,
		PRIMARY KEY (project_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_files_language ON files(project_id, language);

	CREATE TABLE IF NOT EXISTS symbol_relations (
		stable_id TEXT NOT NULL,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		kind INTEGER NOT NULL,
		name TEXT NOT NULL,
		qualified_name TEXT NOT NULL,
		language TEXT NOT NULL,
		file_path TEXT NOT NULL,
		start_line INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		signature TEXT DEFAULT '',
		parent_id TEXT DEFAULT '',
		doc_comment TEXT DEFAULT '',
		PRIMARY KEY (project_id, stable_id)
	);

	CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbol_relations(project_id, file_path, start_line, end_line);
	CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbol_relations(project_id, name);
	CREATE INDEX IF NOT EXISTS idx_symbols_parent ON symbol_relations(project_id, parent_id);

	CREATE TABLE IF NOT EXISTS imports (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		from_file TEXT NOT NULL,
		to_module TEXT NOT NULL,
		imported_as TEXT DEFAULT '',
		PRIMARY KEY (project_id, from_file, to_module)
	);

	CREATE INDEX IF NOT EXISTS idx_imports_to_module ON imports(project_id, to_module);

	CREATE TABLE IF NOT EXISTS manifest (
		project_id TEXT PRIMARY KEY REFERENCES projects(id) ON DELETE CASCADE,
		schema_version INTEGER NOT NULL,
		parser_version INTEGER NOT NULL,
		generation INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Now returns the current time as a unix timestamp. Stored as INTEGER
// rather than RFC3339 text (unlike the teacher's projects table) because
// relstore's callers need numeric comparisons for freshness/ordering.
func Now() int64 {
	return time.Now().UTC().Unix()
}
