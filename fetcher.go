package tilecache

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

// DefaultAccept is the Accept header sent when the caller supplies none.
const DefaultAccept = "text/html, image/png, image/jpeg, image/gif, */*"

// HTTPConfig carries the per-Job network configuration.
type HTTPConfig struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	// Headers are extra request headers merged with the default Accept.
	Headers http.Header
}

func (c HTTPConfig) headers() http.Header {
	h := make(http.Header)
	h.Set("Accept", DefaultAccept)
	for name, values := range c.Headers {
		h.Del(name)
		for _, v := range values {
			h.Add(name, v)
		}
	}
	return h
}

// Capabilities is the explicit, function-valued capability object a caller
// uses to customize per-job behavior without subclassing. Every field is
// optional; a nil field selects the default behavior.
type Capabilities struct {
	// CreateCacheEntry builds a CacheEntry from downloaded (or empty)
	// bytes. Defaults to wrapping the bytes in a CacheEntry as-is.
	CreateCacheEntry func(content []byte) CacheEntry
	// IsResponseLoadable overrides the default loadability predicate
	// (body non-empty AND code < 400).
	IsResponseLoadable func(headers http.Header, code int, body []byte) bool
	// CacheAsEmpty overrides the default negative-caching predicate
	// (code < 500).
	CacheAsEmpty func(code int) bool
	// GetServerKey overrides the OriginProfile key derived from a URL;
	// defaults to the URL's hostname.
	GetServerKey func(rawURL string) string
	// GetCacheKey derives the CacheBackend key from a URL. Returning
	// ok=false signals that no key could be derived, surfacing as
	// ErrNoURL from Submit. Defaults to using the URL itself as the key.
	GetCacheKey func(rawURL string) (key string, ok bool)
}

func (c Capabilities) cacheKey(rawURL string) (string, bool) {
	if c.GetCacheKey != nil {
		return c.GetCacheKey(rawURL)
	}
	if rawURL == "" {
		return "", false
	}
	return rawURL, true
}

func (c Capabilities) createEntry(content []byte) CacheEntry {
	if c.CreateCacheEntry != nil {
		return c.CreateCacheEntry(content)
	}
	if len(content) == 0 {
		return emptyEntry()
	}
	return CacheEntry{Content: content}
}

func (c Capabilities) isResponseLoadable(headers http.Header, code int, body []byte) bool {
	if c.IsResponseLoadable != nil {
		return c.IsResponseLoadable(headers, code, body)
	}
	return len(body) > 0 && code < 400
}

func (c Capabilities) cacheAsEmpty(code int) bool {
	if c.CacheAsEmpty != nil {
		return c.CacheAsEmpty(code)
	}
	return code < 500
}

func (c Capabilities) serverKey(rawURL string) string {
	if c.GetServerKey != nil {
		return c.GetServerKey(rawURL)
	}
	return HostOf(rawURL)
}

// FetchOutcome tags the result of a Fetcher run.
type FetchOutcome int

const (
	FetchFailed FetchOutcome = iota
	// FetchRevalidated means the existing cached entry is confirmed
	// current (304, or a successful HEAD-probe match); no new content.
	FetchRevalidated
	// FetchStored means new attributes (and possibly new, possibly empty)
	// content were produced and should be persisted.
	FetchStored
)

// FetchResult is the Fetcher's single, always-returned-value outcome.
type FetchResult struct {
	Outcome FetchOutcome
	Entry   CacheEntry
	Attrs   Attributes
	Err     error
}

// FetchRequest bundles the inputs to a single Fetcher run.
type FetchRequest struct {
	URL            string
	Now            time.Time
	Force          bool
	HasCachedEntry bool
	CachedLoadable bool
	CachedAttrs    Attributes
	Capabilities   Capabilities
	Config         HTTPConfig
}

// Fetcher executes one network interaction per Job run: an optional
// HEAD-probe preflight, then a conditional GET with redirect-following and
// 503 backoff.
type Fetcher struct {
	Transport Transport
	Origins   *OriginProfile

	// Sleep is the backoff delay function, overridable in tests. Defaults
	// to time.Sleep.
	Sleep func(time.Duration)
	// Rand supplies the jitter source, overridable in tests. Defaults to
	// the package-level math/rand source.
	Rand func() float64
}

func (f *Fetcher) sleep(d time.Duration) {
	if f.Sleep != nil {
		f.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (f *Fetcher) jitter() time.Duration {
	r := rand.Float64()
	if f.Rand != nil {
		r = f.Rand()
	}
	return 5000*time.Millisecond + time.Duration(r*5000)*time.Millisecond
}

// Fetch runs the full HEAD-probe/conditional-GET protocol for one Job.
func (f *Fetcher) Fetch(ctx context.Context, fr FetchRequest) FetchResult {
	host := fr.Capabilities.serverKey(fr.URL)

	if fr.HasCachedEntry && fr.CachedLoadable && f.Origins.NeedsHeadProbe(host) {
		if attrs, ok := f.headProbe(ctx, fr); ok {
			return FetchResult{Outcome: FetchRevalidated, Attrs: attrs}
		}
	}

	return f.conditionalGet(ctx, fr, host)
}

// headProbe issues a HEAD request (following redirects) and reports whether
// the cached entry remains valid without reading a body.
func (f *Fetcher) headProbe(ctx context.Context, fr FetchRequest) (Attributes, bool) {
	headers := fr.Config.headers()
	conn, err := f.attempt(ctx, http.MethodHead, fr.URL, headers, fr.Config, !fr.Force)
	if err != nil {
		return Attributes{}, false
	}
	defer conn.Close()

	respETag := conn.HeaderField("ETag")
	respLastModified := parseHeaderTime(conn.HeaderFields(), "Last-Modified")

	validByETag := fr.CachedAttrs.HasETag() && respETag == fr.CachedAttrs.ETag
	validByLastModified := respLastModified != 0 && respLastModified <= fr.CachedAttrs.LastModification

	if validByETag || validByLastModified {
		attrs := fr.CachedAttrs
		attrs.ResponseCode = conn.ResponseCode()
		return attrs, true
	}
	return Attributes{}, false
}

// conditionalGet implements the main GET path: conditional headers, up to
// MaxResponseIterations attempts with 503 backoff (a fresh request each
// iteration), then the response loop that decides loadable/negative-cache/
// failure.
func (f *Fetcher) conditionalGet(ctx context.Context, fr FetchRequest, host string) FetchResult {
	headers := fr.Config.headers()
	if fr.HasCachedEntry {
		nowMs := millis(fr.Now)
		if nowMs-fr.CachedAttrs.LastModification <= AbsoluteExpire.Milliseconds() {
			headers.Set("If-Modified-Since", time.UnixMilli(fr.CachedAttrs.LastModification).UTC().Format(http.TimeFormat))
		}
		if fr.CachedAttrs.HasETag() {
			headers.Set("If-None-Match", fr.CachedAttrs.ETag)
		}
	}

	var conn Connection
	for iteration := 0; iteration < MaxResponseIterations; iteration++ {
		c, err := f.attempt(ctx, http.MethodGet, fr.URL, headers, fr.Config, !fr.Force)
		if err != nil {
			return f.transportError(fr, err)
		}
		if c.ResponseCode() == http.StatusServiceUnavailable {
			c.Close()
			f.sleep(f.jitter())
			continue
		}
		conn = c
		break
	}

	if conn == nil {
		// Exhausted every iteration with 503s.
		attrs := fr.CachedAttrs
		attrs.ResponseCode = http.StatusServiceUnavailable
		attrs.ErrorMessage = "origin returned 503 on every retry"
		return FetchResult{Outcome: FetchFailed, Attrs: attrs, Err: fmt.Errorf("tilecache: %s: %s", fr.URL, attrs.ErrorMessage)}
	}
	defer conn.Close()

	if conn.ResponseCode() == http.StatusNotModified {
		attrs := fr.CachedAttrs
		attrs.ResponseCode = http.StatusNotModified
		return FetchResult{Outcome: FetchRevalidated, Attrs: attrs}
	}

	if fr.HasCachedEntry {
		f.detectNonCompliance(conn, fr.CachedAttrs, host)
	}

	attrs := ParseAttributes(conn.HeaderFields(), fr.Now)

	var body []byte
	if conn.ResponseCode() == http.StatusOK {
		b, err := io.ReadAll(conn.Body())
		if err != nil {
			return f.transportError(fr, err)
		}
		body = b
	}

	return f.finalize(fr.Capabilities, attrs, conn.HeaderFields(), conn.ResponseCode(), body)
}

// detectNonCompliance flags an origin that returns a non-304 response
// despite an unchanged validator, so future jobs fall back to HEAD-probe.
func (f *Fetcher) detectNonCompliance(conn Connection, cached Attributes, host string) {
	respETag := conn.HeaderField("ETag")
	respLastModified := parseHeaderTime(conn.HeaderFields(), "Last-Modified")

	etagUnchanged := cached.HasETag() && respETag != "" && respETag == cached.ETag
	lastModifiedUnchanged := respLastModified != 0 && respLastModified == cached.LastModification

	if etagUnchanged || lastModifiedUnchanged {
		f.Origins.MarkNonCompliant(host)
	}
}

// finalize applies the loadability/negative-cache/failure decision.
func (f *Fetcher) finalize(caps Capabilities, attrs Attributes, headers http.Header, code int, body []byte) FetchResult {
	attrs.ResponseCode = code

	if caps.isResponseLoadable(headers, code, body) {
		return FetchResult{Outcome: FetchStored, Entry: caps.createEntry(body), Attrs: attrs}
	}
	if caps.cacheAsEmpty(code) {
		return FetchResult{Outcome: FetchStored, Entry: caps.createEntry(nil), Attrs: attrs}
	}
	return FetchResult{
		Outcome: FetchFailed,
		Attrs:   attrs,
		Err:     fmt.Errorf("tilecache: non-cacheable response: status %d", code),
	}
}

// transportError records a Transport I/O failure as code 499. If a loadable
// cached entry exists, it reports FetchFailed so the Job's stale-on-failure
// fallback can serve that entry untouched; a transient network blip must
// never clobber good content with a negative-cache write. With nothing
// cached to fall back to, it applies the same loadable/cacheAsEmpty caching
// choice as a normal response, just with an empty body (a 404 already flows
// through the normal response path above, since Go's http.Client surfaces it
// as a status rather than a distinct error type).
func (f *Fetcher) transportError(fr FetchRequest, err error) FetchResult {
	attrs := Attributes{
		CreateTime:       millis(fr.Now),
		LastModification: millis(fr.Now),
		ResponseCode:     TransportErrorCode,
		ErrorMessage:     err.Error(),
	}
	if fr.HasCachedEntry && fr.CachedLoadable {
		return FetchResult{
			Outcome: FetchFailed,
			Attrs:   attrs,
			Err:     fmt.Errorf("tilecache: %s: %w", fr.URL, err),
		}
	}
	return f.finalize(fr.Capabilities, attrs, nil, TransportErrorCode, nil)
}

// attempt issues one request, following up to MaxRedirects 302 responses by
// reopening against the redirect Location. A redirect cycle exceeding
// MaxRedirects is treated as the final non-redirect response observed.
func (f *Fetcher) attempt(ctx context.Context, method, urlStr string, headers http.Header, cfg HTTPConfig, useCache bool) (Connection, error) {
	var conn Connection
	for i := 0; i <= MaxRedirects; i++ {
		c, err := f.Transport.Do(ctx, Request{
			Method:         method,
			URL:            urlStr,
			Headers:        headers,
			ConnectTimeout: cfg.ConnectTimeout,
			ReadTimeout:    cfg.ReadTimeout,
			UseCache:       useCache,
		})
		if err != nil {
			return nil, err
		}
		conn = c

		if c.ResponseCode() != http.StatusFound || i == MaxRedirects {
			return conn, nil
		}
		location := c.HeaderField("Location")
		if location == "" {
			return conn, nil
		}
		c.Close()
		urlStr = location
	}
	return conn, nil
}

func parseHeaderTime(headers http.Header, name string) int64 {
	if headers == nil {
		return 0
	}
	raw := headers.Get(name)
	if raw == "" {
		return 0
	}
	t, err := http.ParseTime(raw)
	if err != nil {
		return 0
	}
	return millis(t)
}
