// Package sqlcache provides tilecache.CacheBackend implementations over
// database/sql: SQLite (via mattn/go-sqlite3) for a single-process
// deployment and Postgres (via lib/pq) for a shared one.
package sqlcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mchtech/tilecache"
)

// SQLite is a tilecache.CacheBackend backed by a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if necessary) a SQLite database at path and
// initializes its schema. An empty path defaults to
// $HOME/.tilecache/cache.db.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("tilecache: home directory: %w", err)
		}
		path = filepath.Join(home, ".tilecache", "cache.db")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("tilecache: create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("tilecache: open sqlite database: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("tilecache: initialize sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tile_cache (
			key TEXT PRIMARY KEY,
			data BLOB NOT NULL
		)
	`)
	return err
}

// Get returns the content and attributes stored under key, if present.
func (s *SQLite) Get(key string) (content []byte, attrs tilecache.Attributes, ok bool) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM tile_cache WHERE key = ?`, key).Scan(&data)
	if err != nil {
		return nil, tilecache.Attributes{}, false
	}
	return tilecache.DecodeEntry(data)
}

// Put stores content and attrs under key, overwriting any previous value.
func (s *SQLite) Put(key string, content []byte, attrs tilecache.Attributes) {
	data, err := tilecache.EncodeEntry(content, attrs)
	if err != nil {
		return
	}
	s.db.Exec(`INSERT OR REPLACE INTO tile_cache (key, data) VALUES (?, ?)`, key, data)
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
