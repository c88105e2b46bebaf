// Package cachetest exercises a tilecache.CacheBackend implementation with a
// shared conformance suite, so every backend (diskcache, memcache,
// rediscache, leveldbcache, badgercache, sqlcache) is held to the same
// behavioral contract.
package cachetest

import (
	"bytes"
	"testing"
	"time"

	"github.com/mchtech/tilecache"
)

// Backend exercises backend's Get/Put contract: miss before any Put, exact
// content plus the ETag and ResponseCode attributes round-trip after a Put,
// and overwrite-on-repeat.
func Backend(t *testing.T, backend tilecache.CacheBackend) {
	t.Helper()

	key := "testKey"

	if _, _, ok := backend.Get(key); ok {
		t.Fatal("retrieved key before adding it")
	}

	now := time.Now()
	attrs := tilecache.Attributes{
		CreateTime:       now.UnixMilli(),
		LastModification: now.UnixMilli(),
		ETag:             `"abc123"`,
		ResponseCode:     200,
	}.Normalize()
	content := []byte("some bytes")

	backend.Put(key, content, attrs)

	gotContent, gotAttrs, ok := backend.Get(key)
	if !ok {
		t.Fatal("could not retrieve an element we just added")
	}
	if !bytes.Equal(gotContent, content) {
		t.Fatalf("content = %q, want %q", gotContent, content)
	}
	if gotAttrs.ETag != attrs.ETag {
		t.Fatalf("ETag = %q, want %q", gotAttrs.ETag, attrs.ETag)
	}
	if gotAttrs.ResponseCode != attrs.ResponseCode {
		t.Fatalf("ResponseCode = %d, want %d", gotAttrs.ResponseCode, attrs.ResponseCode)
	}

	overwritten := []byte("different bytes")
	overwrittenAttrs := attrs
	overwrittenAttrs.ResponseCode = 304
	backend.Put(key, overwritten, overwrittenAttrs)

	gotContent, gotAttrs, ok = backend.Get(key)
	if !ok {
		t.Fatal("could not retrieve an element after overwrite")
	}
	if !bytes.Equal(gotContent, overwritten) {
		t.Fatalf("content after overwrite = %q, want %q", gotContent, overwritten)
	}
	if gotAttrs.ResponseCode != 304 {
		t.Fatalf("ResponseCode after overwrite = %d, want 304", gotAttrs.ResponseCode)
	}
}

// NegativeEntry exercises storing and retrieving a negatively-cached
// (zero-length content) entry, the representation a Job uses for a
// cacheable non-2xx response.
func NegativeEntry(t *testing.T, backend tilecache.CacheBackend) {
	t.Helper()

	key := "negativeKey"
	attrs := tilecache.Attributes{
		CreateTime:       time.Now().UnixMilli(),
		LastModification: time.Now().UnixMilli(),
		ResponseCode:     404,
	}

	backend.Put(key, []byte{}, attrs)

	content, gotAttrs, ok := backend.Get(key)
	if !ok {
		t.Fatal("could not retrieve negatively cached entry")
	}
	if len(content) != 0 {
		t.Fatalf("content = %q, want empty", content)
	}
	if gotAttrs.ResponseCode != 404 {
		t.Fatalf("ResponseCode = %d, want 404", gotAttrs.ResponseCode)
	}
}
