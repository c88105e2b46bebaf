package config

import (
	"fmt"

	"github.com/mchtech/tilecache"
	"github.com/mchtech/tilecache/badgercache"
	"github.com/mchtech/tilecache/diskcache"
	"github.com/mchtech/tilecache/leveldbcache"
	"github.com/mchtech/tilecache/memcache"
	"github.com/mchtech/tilecache/rediscache"
	"github.com/mchtech/tilecache/sqlcache"

	"github.com/gomodule/redigo/redis"
)

// NewBackend constructs the CacheBackend named by cfg.Backend.
func NewBackend(cfg CacheConfig) (tilecache.CacheBackend, error) {
	switch cfg.Backend {
	case "", "disk":
		return diskcache.New(cfg.Path), nil
	case "memcache":
		return memcache.New(cfg.Servers...), nil
	case "redis":
		server := "localhost:6379"
		if len(cfg.Servers) > 0 {
			server = cfg.Servers[0]
		}
		conn, err := redis.Dial("tcp", server)
		if err != nil {
			return nil, fmt.Errorf("tilecache: dial redis: %w", err)
		}
		return rediscache.NewWithClient(conn), nil
	case "leveldb":
		return leveldbcache.New(cfg.Path)
	case "badger":
		return badgercache.New(cfg.Path)
	case "sqlite":
		return sqlcache.NewSQLite(cfg.Path)
	case "postgres":
		return sqlcache.NewPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("tilecache: unknown cache backend %q", cfg.Backend)
	}
}
