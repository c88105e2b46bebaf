package tilecache

import "encoding/json"

// wireEntry is the on-disk/on-wire representation a CacheBackend persists:
// content bytes plus their sidecar Attributes, serialized together so a
// single key→value store (disk file, redis key, memcache item, badger
// record, SQL row) can hold both halves of a cache entry.
type wireEntry struct {
	Content []byte     `json:"content"`
	Attrs   Attributes `json:"attrs"`
}

// EncodeEntry serializes content and attrs into the byte form every
// included CacheBackend implementation stores under a key.
func EncodeEntry(content []byte, attrs Attributes) ([]byte, error) {
	return json.Marshal(wireEntry{Content: content, Attrs: attrs})
}

// DecodeEntry reverses EncodeEntry. ok is false if data doesn't parse as a
// wireEntry, which a backend should treat the same as a cache miss.
func DecodeEntry(data []byte) (content []byte, attrs Attributes, ok bool) {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, Attributes{}, false
	}
	return w.Content, w.Attrs, true
}
