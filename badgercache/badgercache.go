// Package badgercache provides a tilecache.CacheBackend backed by
// github.com/dgraph-io/badger/v2.
package badgercache

import (
	badger "github.com/dgraph-io/badger/v2"

	"github.com/mchtech/tilecache"
)

// Backend is a tilecache.CacheBackend with badger storage.
type Backend struct {
	db *badger.DB
}

// Get returns the content and attributes stored under key, if present.
func (b *Backend) Get(key string) (content []byte, attrs tilecache.Attributes, ok bool) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
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
	b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// New returns a new Backend storing its badger files under path.
func New(path string) (*Backend, error) {
	db, err := badger.Open(badger.DefaultOptions(path))
	if err != nil {
		return nil, err
	}
	return &Backend{db: db}, nil
}

// NewWithDB returns a new Backend using the provided badger.DB as
// underlying storage.
func NewWithDB(db *badger.DB) *Backend {
	return &Backend{db: db}
}
