package tilecache

import (
	"net/url"
	"sync"
)

// OriginProfile tracks, per origin hostname, whether that origin has been
// observed ignoring conditional GET validators. Once set, an origin stays
// in HEAD-probe mode for the lifetime of the process; nothing ever clears
// the flag. Guarded by a single mutex.
type OriginProfile struct {
	mu   sync.Mutex
	head map[string]bool
}

// NewOriginProfile constructs an empty profile.
func NewOriginProfile() *OriginProfile {
	return &OriginProfile{head: make(map[string]bool)}
}

// NeedsHeadProbe reports whether host has previously been observed ignoring
// conditional GET validators.
func (p *OriginProfile) NeedsHeadProbe(host string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.head[host]
}

// MarkNonCompliant records that host returned a non-304 response despite a
// matching validator. Monotonic: once true, always true.
func (p *OriginProfile) MarkNonCompliant(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.head[host] = true
}

// HostOf extracts the hostname component used as the OriginProfile key. A
// string that yields no hostname is returned unchanged.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
