package tilecache

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Transport produces Connections for a URL and a request method, abstracting
// the network boundary. The core depends only on this interface and its
// default *http.Client implementation below; any other transport (a test
// double, a fasthttp adapter) need only satisfy it.
type Transport interface {
	// Do issues a request with the given method, headers, and timeouts,
	// following no redirects itself (the Fetcher drives redirects so it
	// can re-apply conditional headers per attempt).
	Do(ctx context.Context, req Request) (Connection, error)
}

// Request is an immutable per-attempt request descriptor. A fresh Request is
// built for each redirect/retry attempt rather than mutating a shared
// connection object.
type Request struct {
	Method         string
	URL            string
	Headers        http.Header
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UseCache       bool
}

// Connection is the observable response surface a Transport attempt
// produces.
type Connection interface {
	ResponseCode() int
	HeaderField(name string) string
	HeaderFields() http.Header
	Body() io.ReadCloser
	Close() error
}

// httpConnection adapts *http.Response to the Connection interface.
type httpConnection struct {
	resp *http.Response
}

func (c *httpConnection) ResponseCode() int             { return c.resp.StatusCode }
func (c *httpConnection) HeaderField(name string) string { return c.resp.Header.Get(name) }
func (c *httpConnection) HeaderFields() http.Header      { return c.resp.Header }
func (c *httpConnection) Body() io.ReadCloser            { return c.resp.Body }
func (c *httpConnection) Close() error                   { return c.resp.Body.Close() }

// HTTPTransport is the default Transport, backed by net/http. Each call to
// Do builds a client scoped to the request's timeouts rather than reusing
// shared mutable connection state.
type HTTPTransport struct {
	// RoundTripper is the underlying transport; defaults to
	// http.DefaultTransport when nil.
	RoundTripper http.RoundTripper
}

func (t *HTTPTransport) Do(ctx context.Context, r Request) (Connection, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, nil)
	if err != nil {
		return nil, err
	}
	for name, values := range r.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if !r.UseCache {
		req.Header.Set("Cache-Control", "no-cache")
	}

	rt := t.RoundTripper
	if rt == nil {
		rt = http.DefaultTransport
	}
	client := &http.Client{
		Transport: rt,
		// The Fetcher follows redirects itself, one attempt at a time, so
		// it can re-apply the conditional headers to the new Location.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: r.ConnectTimeout + r.ReadTimeout,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	return &httpConnection{resp: resp}, nil
}
