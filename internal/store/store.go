package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for a persisted catalog.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the catalog tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// One row per entity. ordinal is the position within its kind's set, which
// is how insertion order survives a round trip. type_* columns hold the
// enum backing type, the typedef target or the function return type.
// Enumerator values are stored as their 64 raw bits; is_unsigned says how
// to read them back.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS entities (
  id              INTEGER PRIMARY KEY,
  kind            TEXT NOT NULL,
  name            TEXT NOT NULL,
  ordinal         INTEGER NOT NULL,
  type_name       TEXT,
  type_primitive  TEXT,
  type_array_len  INTEGER DEFAULT 0,
  is_unsigned     BOOLEAN DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS members (
  id              INTEGER PRIMARY KEY,
  entity_id       INTEGER NOT NULL REFERENCES entities(id),
  ordinal         INTEGER NOT NULL,
  name            TEXT NOT NULL,
  type_name       TEXT,
  type_primitive  TEXT,
  type_array_len  INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS enum_values (
  id              INTEGER PRIMARY KEY,
  entity_id       INTEGER NOT NULL REFERENCES entities(id),
  ordinal         INTEGER NOT NULL,
  name            TEXT NOT NULL,
  bits            INTEGER NOT NULL,
  is_unsigned     BOOLEAN DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS catalog_meta (
  key             TEXT PRIMARY KEY,
  value           TEXT
);

CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind, ordinal);
CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);
CREATE INDEX IF NOT EXISTS idx_members_entity ON members(entity_id, ordinal);
CREATE INDEX IF NOT EXISTS idx_enum_values_entity ON enum_values(entity_id, ordinal);
`

// DeleteCatalog transactionally removes every stored entity. Child rows go
// first to respect FK constraints.
func (s *Store) DeleteCatalog() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteCatalogTx(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteCatalogTx(tx *sql.Tx) error {
	for _, q := range []string{
		"DELETE FROM enum_values",
		"DELETE FROM members",
		"DELETE FROM entities",
		"DELETE FROM catalog_meta",
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("delete catalog: %w", err)
		}
	}
	return nil
}
