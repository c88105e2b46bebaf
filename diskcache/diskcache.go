// Package diskcache provides a tilecache.CacheBackend that uses the diskv
// package to persist cache entries to the local filesystem.
package diskcache

import (
	"crypto/md5"
	"encoding/hex"
	"io"

	"github.com/peterbourgon/diskv/v3"

	"github.com/mchtech/tilecache"
)

// Backend is a tilecache.CacheBackend backed by diskv.
type Backend struct {
	d *diskv.Diskv
}

// Get returns the content and attributes stored under key, if present.
func (b *Backend) Get(key string) (content []byte, attrs tilecache.Attributes, ok bool) {
	data, err := b.d.Read(keyToFilename(key))
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
	b.d.Write(keyToFilename(key), data)
}

func keyToFilename(key string) string {
	h := md5.New()
	io.WriteString(h, key)
	return hex.EncodeToString(h.Sum(nil))
}

// New returns a new Backend that stores files under basePath.
func New(basePath string) *Backend {
	return &Backend{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 100 * 1024 * 1024, // 100MB
		}),
	}
}

// NewWithDiskv returns a new Backend using the provided Diskv as underlying
// storage.
func NewWithDiskv(d *diskv.Diskv) *Backend {
	return &Backend{d}
}
