package tilecache

import "time"

// Tunable constants governing cache lifetime.
const (
	// DefaultExpire is the assumed freshness window when a response carries
	// no explicit expiration and the caller must fall back to an implicit
	// one derived from Last-Modified or CreateTime.
	DefaultExpire = 7 * 24 * time.Hour

	// OriginExpireCap bounds how far into the future an origin's Expires
	// header is allowed to push an entry, regardless of what it claims.
	OriginExpireCap = 28 * 24 * time.Hour

	// AbsoluteExpire bounds how stale an entry's Last-Modified may be
	// before it is no longer served, even as a stale-on-failure fallback.
	AbsoluteExpire = 365 * 24 * time.Hour

	// MaxRedirects bounds the number of 302 redirects the Fetcher follows.
	MaxRedirects = 5

	// MaxResponseIterations bounds the 503-retry response loop.
	MaxResponseIterations = 5

	// TransportErrorCode is the synthetic response code recorded when the
	// transport itself fails (as opposed to the origin returning an error
	// status).
	TransportErrorCode = 499
)

// Attributes is the sidecar metadata persisted alongside a CacheEntry's
// content bytes. All timestamps are milliseconds since the Unix epoch, to
// match the wire-level precision a CacheBackend is expected to persist.
type Attributes struct {
	// CreateTime is set by the backend (or the Job, for a backend that
	// doesn't stamp it itself) at Put time.
	CreateTime int64
	// LastModification is the origin's Last-Modified value, or the Job's
	// observation time if the origin didn't send one.
	LastModification int64
	// ExpirationTime is an absolute ms timestamp; zero means "unknown".
	ExpirationTime int64
	// ETag is the origin's validator, or "" if absent.
	ETag string
	// ResponseCode is the HTTP status of the response that produced this
	// entry, or TransportErrorCode on a transport I/O failure.
	ResponseCode int
	// ErrorMessage carries free-form diagnostic text for failed fetches.
	ErrorMessage string
}

// HasETag reports whether the entry carries a validator.
func (a Attributes) HasETag() bool { return a.ETag != "" }

// clampExpiration enforces the OriginExpireCap invariant: a persisted
// ExpirationTime never exceeds CreateTime+OriginExpireCap.
func clampExpiration(createTimeMs, expirationMs int64) int64 {
	if expirationMs == 0 {
		return 0
	}
	ceiling := createTimeMs + OriginExpireCap.Milliseconds()
	if expirationMs > ceiling {
		return ceiling
	}
	return expirationMs
}

// Normalize clamps ExpirationTime against CreateTime and returns the
// resulting Attributes. Callers should normalize once, at construction, so
// every later reader sees the invariant already enforced.
func (a Attributes) Normalize() Attributes {
	a.ExpirationTime = clampExpiration(a.CreateTime, a.ExpirationTime)
	return a
}

// tooOldToServe implements the ABSOLUTE_EXPIRE_TIME_LIMIT invariant: an
// entry whose LastModification predates now-AbsoluteExpire is never served,
// fresh or stale.
func tooOldToServe(a Attributes, nowMs int64) bool {
	if a.LastModification == 0 {
		return false
	}
	return nowMs-a.LastModification > AbsoluteExpire.Milliseconds()
}

func millis(t time.Time) int64 { return t.UnixMilli() }
