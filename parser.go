package tilecache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ParseAttributes builds Attributes from a response header view, preferring
// an absolute Expires header over a relative Cache-Control max-age.
//
// now is the time the Job observed the response; it becomes CreateTime,
// LastModification when the response carries no usable Last-Modified, and
// the basis for a relative max-age expiration.
func ParseAttributes(header http.Header, now time.Time) Attributes {
	nowMs := millis(now)

	attrs := Attributes{
		CreateTime:       nowMs,
		LastModification: nowMs,
		ETag:             header.Get("ETag"),
	}

	if lm := header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			attrs.LastModification = millis(t)
		}
	}

	if exp := parseExpiresHeader(header, now); exp != 0 {
		attrs.ExpirationTime = exp
	} else if maxAge, ok := parseMaxAge(header); ok {
		attrs.ExpirationTime = nowMs + maxAge.Milliseconds()
	}

	return attrs.Normalize()
}

// parseExpiresHeader returns an absolute ms timestamp from the Expires
// header, or 0 if absent/malformed.
func parseExpiresHeader(header http.Header, now time.Time) int64 {
	raw := header.Get("Expires")
	if raw == "" {
		return 0
	}
	t, err := http.ParseTime(raw)
	if err != nil {
		return 0
	}
	return millis(t)
}

// parseMaxAge scans the Cache-Control header for the first max-age=N token
// (comma-split, first match wins). Malformed integers are silently
// ignored.
func parseMaxAge(header http.Header) (time.Duration, bool) {
	cc := header.Get("Cache-Control")
	if cc == "" {
		return 0, false
	}
	for _, part := range strings.Split(cc, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(strings.ToLower(part), "max-age") {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(part[eq+1:]), 10, 64)
		if err != nil {
			continue
		}
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}
