// Package memcache provides a tilecache.CacheBackend that uses gomemcache
// to store cache entries in a memcache server.
package memcache

import (
	"github.com/bradfitz/gomemcache/memcache"

	"github.com/mchtech/tilecache"
)

// Backend is a tilecache.CacheBackend backed by a memcache server.
type Backend struct {
	client *memcache.Client
}

// cacheKey namespaces a tilecache key to avoid collision with other data
// stored in the same memcache server.
func cacheKey(key string) string {
	return "tilecache:" + key
}

// Get returns the content and attributes stored under key, if present.
func (b *Backend) Get(key string) (content []byte, attrs tilecache.Attributes, ok bool) {
	item, err := b.client.Get(cacheKey(key))
	if err != nil {
		return nil, tilecache.Attributes{}, false
	}
	return tilecache.DecodeEntry(item.Value)
}

// Put stores content and attrs under key, overwriting any previous value.
func (b *Backend) Put(key string, content []byte, attrs tilecache.Attributes) {
	data, err := tilecache.EncodeEntry(content, attrs)
	if err != nil {
		return
	}
	b.client.Set(&memcache.Item{Key: cacheKey(key), Value: data})
}

// New returns a new Backend using the provided memcache server(s) with
// equal weight. If a server is listed multiple times, it gets a
// proportional amount of weight.
func New(server ...string) *Backend {
	return NewWithClient(memcache.New(server...))
}

// NewWithClient returns a new Backend with the given memcache client.
func NewWithClient(client *memcache.Client) *Backend {
	return &Backend{client: client}
}
