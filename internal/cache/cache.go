// Package cache stores castxml dumps in SQLite so unchanged headers are not
// re-parsed. Entries are keyed by header path, header content hash and the
// castxml settings signature.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DatabaseName is the SQLite file inside the cache root.
const DatabaseName = "dumps.db"

// Entry is one cached dump.
type Entry struct {
	ID             string
	Key            Key
	CastXMLVersion string
	XML            []byte
	CreatedAt      time.Time
	AccessedAt     time.Time
}

// Stats summarizes cache contents.
type Stats struct {
	Entries int
	Headers int
	Bytes   int64
}

// Cache manages the dump database.
type Cache struct {
	root   string
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now. Timestamps are stored with second precision.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// DefaultRoot returns ~/.cxxscope/cache.
func DefaultRoot() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cxxscope", "cache")
}

// Open opens or creates the dump database under root.
// If root is empty, defaults to ~/.cxxscope/cache.
func Open(root string, opts ...Option) (*Cache, error) {
	if root == "" {
		root = DefaultRoot()
	}
	c := &Cache{root: root, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(root, DatabaseName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	version, err := schemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	if version == "0" {
		if err := createSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	c.db = db
	return c, nil
}

// Root returns the cache directory.
func (c *Cache) Root() string {
	return c.root
}

// Get returns the entry for key and refreshes its access time.
// Returns (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, key Key) (*Entry, error) {
	e := &Entry{Key: key}
	var createdAt, accessedAt string

	err := sq.Select("id", "castxml_version", "xml", "created_at", "accessed_at").
		From("dumps").
		Where(sq.Eq{
			"header":       key.Header,
			"content_hash": key.ContentHash,
			"config_sig":   key.ConfigSig,
		}).
		RunWith(c.db).
		QueryRowContext(ctx).
		Scan(&e.ID, &e.CastXMLVersion, &e.XML, &createdAt, &accessedAt)

	if err == sql.ErrNoRows {
		c.logger.Debug("dump cache miss", "key", key.String())
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dump for %s: %w", key.Header, err)
	}

	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.AccessedAt = c.now().UTC().Truncate(time.Second)

	if _, err := sq.Update("dumps").
		Set("accessed_at", e.AccessedAt.Format(time.RFC3339)).
		Where(sq.Eq{"id": e.ID}).
		RunWith(c.db).
		ExecContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to touch dump %s: %w", e.ID, err)
	}

	c.logger.Debug("dump cache hit", "key", key.String(), "id", e.ID)
	return e, nil
}

// Put stores xml under key, replacing any previous entry with the same key.
func (c *Cache) Put(ctx context.Context, key Key, castxmlVersion string, xml []byte) (*Entry, error) {
	now := c.now().UTC().Truncate(time.Second)
	e := &Entry{
		ID:             uuid.NewString(),
		Key:            key,
		CastXMLVersion: castxmlVersion,
		XML:            xml,
		CreatedAt:      now,
		AccessedAt:     now,
	}

	_, err := sq.Insert("dumps").
		Columns(
			"id", "header", "content_hash", "config_sig", "castxml_version",
			"xml", "size_bytes", "created_at", "accessed_at",
		).
		Values(
			e.ID, key.Header, key.ContentHash, key.ConfigSig, castxmlVersion,
			xml, len(xml), now.Format(time.RFC3339), now.Format(time.RFC3339),
		).
		Options("OR REPLACE").
		RunWith(c.db).
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to store dump for %s: %w", key.Header, err)
	}

	c.logger.Debug("dump cached", "key", key.String(), "bytes", len(xml))
	return e, nil
}

// Prune deletes entries not accessed since before and returns how many were removed.
func (c *Cache) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := sq.Delete("dumps").
		Where(sq.Lt{"accessed_at": before.UTC().Format(time.RFC3339)}).
		RunWith(c.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune dumps: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		c.logger.Info("pruned dump cache", "removed", n)
	}
	return n, nil
}

// PruneOlderThan deletes entries idle for longer than days. Zero keeps everything.
func (c *Cache) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	return c.Prune(ctx, c.now().Add(-time.Duration(days)*24*time.Hour))
}

// Invalidate deletes every entry generated from header.
func (c *Cache) Invalidate(ctx context.Context, header string) (int64, error) {
	if abs, err := filepath.Abs(header); err == nil {
		header = abs
	}
	res, err := sq.Delete("dumps").
		Where(sq.Eq{"header": filepath.ToSlash(header)}).
		RunWith(c.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate %s: %w", header, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Clear deletes every entry.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := sq.Delete("dumps").RunWith(c.db).ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear dumps: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats reports entry, header and byte counts.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := sq.Select("COUNT(*)", "COUNT(DISTINCT header)", "COALESCE(SUM(size_bytes), 0)").
		From("dumps").
		RunWith(c.db).
		QueryRowContext(ctx).
		Scan(&s.Entries, &s.Headers, &s.Bytes)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
