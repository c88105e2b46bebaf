package sqlcache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/mchtech/tilecache"
)

// Postgres is a tilecache.CacheBackend backed by a shared Postgres
// database, suitable for a Loader pool spread across multiple processes.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects to dsn, configures a connection pool sized for a
// multi-process deployment, and initializes the schema.
func NewPostgres(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("tilecache: postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("tilecache: connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("tilecache: ping postgres: %w", err)
	}
	if err := initPostgresSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("tilecache: initialize postgres schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func initPostgresSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tile_cache (
			key TEXT PRIMARY KEY,
			data BYTEA NOT NULL
		)
	`)
	return err
}

// Get returns the content and attributes stored under key, if present.
func (p *Postgres) Get(key string) (content []byte, attrs tilecache.Attributes, ok bool) {
	var data []byte
	err := p.db.QueryRow(`SELECT data FROM tile_cache WHERE key = $1`, key).Scan(&data)
	if err != nil {
		return nil, tilecache.Attributes{}, false
	}
	return tilecache.DecodeEntry(data)
}

// Put stores content and attrs under key, overwriting any previous value.
func (p *Postgres) Put(key string, content []byte, attrs tilecache.Attributes) {
	data, err := tilecache.EncodeEntry(content, attrs)
	if err != nil {
		return
	}
	p.db.Exec(`
		INSERT INTO tile_cache (key, data) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data
	`, key, data)
}

// Close releases the underlying database handle.
func (p *Postgres) Close() error {
	return p.db.Close()
}
