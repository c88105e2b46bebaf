// Package leveldbcache provides a tilecache.CacheBackend backed by
// github.com/syndtr/goleveldb/leveldb.
package leveldbcache

import (
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/mchtech/tilecache"
)

// Backend is a tilecache.CacheBackend with leveldb storage.
type Backend struct {
	db *leveldb.DB
}

// Get returns the content and attributes stored under key, if present.
func (b *Backend) Get(key string) (content []byte, attrs tilecache.Attributes, ok bool) {
	data, err := b.db.Get([]byte(key), nil)
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
	b.db.Put([]byte(key), data, nil)
}

// New returns a new Backend storing its leveldb files under path.
func New(path string) (*Backend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db}, nil
}

// NewWithDB returns a new Backend using the provided leveldb.DB as
// underlying storage.
func NewWithDB(db *leveldb.DB) *Backend {
	return &Backend{db: db}
}
