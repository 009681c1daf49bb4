package cache

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to cache_metadata when the schema is created.
const SchemaVersion = "1.0"

// createSchema creates the dump tables and indexes in one transaction.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"dumps", createDumpsTable},
		{"cache_metadata", createCacheMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT INTO cache_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)`,
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap cache_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// schemaVersion retrieves the schema version from cache_metadata.
// Returns "0" if the table doesn't exist (new database).
func schemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cache_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check cache_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM cache_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in cache_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createDumpsTable = `
CREATE TABLE dumps (
    id TEXT PRIMARY KEY,                         -- uuid
    header TEXT NOT NULL,
    content_hash TEXT NOT NULL,                  -- SHA-256 of header bytes
    config_sig TEXT NOT NULL,                    -- SHA-256 of castxml settings
    castxml_version TEXT NOT NULL DEFAULT '',
    xml BLOB NOT NULL,
    size_bytes INTEGER NOT NULL,
    created_at TEXT NOT NULL,                    -- ISO 8601
    accessed_at TEXT NOT NULL,                   -- ISO 8601
    UNIQUE (header, content_hash, config_sig)
)
`

const createCacheMetadataTable = `
CREATE TABLE cache_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

var indexes = []string{
	"CREATE INDEX idx_dumps_header ON dumps(header)",
	"CREATE INDEX idx_dumps_accessed_at ON dumps(accessed_at)",
}
