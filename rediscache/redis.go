// Package rediscache provides a tilecache.CacheBackend backed by redis.
package rediscache

import (
	"github.com/gomodule/redigo/redis"

	"github.com/mchtech/tilecache"
)

// Backend is a tilecache.CacheBackend backed by a redis connection.
type Backend struct {
	conn redis.Conn
}

// cacheKey namespaces a tilecache key to avoid collision with other data
// stored in the same redis server.
func cacheKey(key string) string {
	return "tilecache:" + key
}

// Get returns the content and attributes stored under key, if present.
func (b *Backend) Get(key string) (content []byte, attrs tilecache.Attributes, ok bool) {
	data, err := redis.Bytes(b.conn.Do("GET", cacheKey(key)))
	if err != nil {
		return nil, tilecache.Attributes{}, false
	}
	return tilecache.DecodeEntry(data)
}

// Put stores content and attrs under key, overwriting any previous value.
func (b *Backend) Put(key string, content []byte, attrs tilecache.Attributes) {
	data, err := tilecache.EncodeEntry(content, attrs)
	if err != nil {
		return
	}
	b.conn.Do("SET", cacheKey(key), data)
}

// NewWithClient returns a new Backend using the given redis connection.
func NewWithClient(conn redis.Conn) *Backend {
	return &Backend{conn: conn}
}
