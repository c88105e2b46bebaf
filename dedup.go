package tilecache

import "sync"

// Listener receives the outcome of exactly one Job submission.
type Listener func(content []byte, attrs Attributes, result LoadResult)

// DedupRegistry ensures at most one in-flight fetch per key across all
// concurrently submitted Jobs. Every listener registered for a key gets its
// own notification when the in-flight fetch completes, rather than sharing
// a single return value.
//
// All operations serialize on a single mutex; critical sections only touch
// the map, never the network, so contention is negligible next to fetch
// latency.
type DedupRegistry struct {
	mu      sync.Mutex
	waiters map[string][]Listener
}

// NewDedupRegistry constructs an empty registry.
func NewDedupRegistry() *DedupRegistry {
	return &DedupRegistry{waiters: make(map[string][]Listener)}
}

// Register adds listener to the waiter set for key. It returns true iff
// this call created the set, meaning the caller is the first submitter for
// key and must schedule the work; returns false if a Job is already
// in-flight for key and this listener will be notified when it completes.
func (r *DedupRegistry) Register(key string, listener Listener) (isFirst bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.waiters[key]
	r.waiters[key] = append(existing, listener)
	return !ok
}

// Drain atomically removes and returns the listener set for key. Once
// drained, a subsequent Register for the same key starts a fresh set and
// reports isFirst=true again.
func (r *DedupRegistry) Drain(key string) []Listener {
	r.mu.Lock()
	defer r.mu.Unlock()

	listeners := r.waiters[key]
	delete(r.waiters, key)
	return listeners
}
