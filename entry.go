package tilecache

// CacheEntry is a cached artifact's content. An entry with zero-length
// Content is a negatively-cached result (e.g. a stored 404); a loadable
// entry always has len(Content) > 0.
type CacheEntry struct {
	Content []byte
}

// Loadable reports whether the entry carries real content, as opposed to a
// negative-cache placeholder.
func (e CacheEntry) Loadable() bool { return len(e.Content) > 0 }

// emptyEntry is the single negative-cache value used by the Fetcher. Every
// caller that needs an "empty" CacheEntry should use this constructor
// rather than allocating `CacheEntry{}` ad hoc, so that the entry used in
// job state and the entry passed to Put are provably the same value.
func emptyEntry() CacheEntry { return CacheEntry{Content: []byte{}} }
