package tilecache

import (
	"net/http"
	"testing"
	"time"
)

func TestParseAttributesExpiresWins(t *testing.T) {
	now := time.Now()
	expires := now.Add(time.Hour).Truncate(time.Second)

	h := http.Header{}
	h.Set("Expires", expires.UTC().Format(http.TimeFormat))
	h.Set("Cache-Control", "max-age=60")
	h.Set("ETag", `"v1"`)

	attrs := ParseAttributes(h, now)

	if attrs.ETag != `"v1"` {
		t.Errorf("ETag = %q, want %q", attrs.ETag, `"v1"`)
	}
	if attrs.ExpirationTime != millis(expires) {
		t.Errorf("ExpirationTime = %d, want %d (Expires header should win over max-age)", attrs.ExpirationTime, millis(expires))
	}
}

func TestParseAttributesMaxAgeFallback(t *testing.T) {
	now := time.Now()
	h := http.Header{}
	h.Set("Cache-Control", "no-transform, max-age=120")

	attrs := ParseAttributes(h, now)

	want := millis(now) + (120 * time.Second).Milliseconds()
	if attrs.ExpirationTime != want {
		t.Errorf("ExpirationTime = %d, want %d", attrs.ExpirationTime, want)
	}
}

func TestParseAttributesLastModified(t *testing.T) {
	now := time.Now()
	lm := now.Add(-time.Hour).Truncate(time.Second)

	h := http.Header{}
	h.Set("Last-Modified", lm.UTC().Format(http.TimeFormat))

	attrs := ParseAttributes(h, now)
	if attrs.LastModification != millis(lm) {
		t.Errorf("LastModification = %d, want %d", attrs.LastModification, millis(lm))
	}
}

func TestParseAttributesNoHeaders(t *testing.T) {
	now := time.Now()
	attrs := ParseAttributes(http.Header{}, now)

	if attrs.ExpirationTime != 0 {
		t.Errorf("ExpirationTime = %d, want 0", attrs.ExpirationTime)
	}
	if attrs.LastModification != millis(now) {
		t.Errorf("LastModification = %d, want %d (falls back to observation time)", attrs.LastModification, millis(now))
	}
}

func TestParseMaxAgeMalformed(t *testing.T) {
	h := http.Header{}
	h.Set("Cache-Control", "max-age=notanumber")

	if _, ok := parseMaxAge(h); ok {
		t.Error("malformed max-age should be ignored, not parsed")
	}
}

func TestParseMaxAgeAbsent(t *testing.T) {
	h := http.Header{}
	h.Set("Cache-Control", "no-cache")

	if _, ok := parseMaxAge(h); ok {
		t.Error("missing max-age token should report ok=false")
	}
}
