package tilecache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func noSleep(time.Duration) {}

func TestFetcherConditionalGetStoresNewContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"v1"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("tile bytes"))
	}))
	defer srv.Close()

	f := &Fetcher{Transport: &HTTPTransport{}, Origins: NewOriginProfile(), Sleep: noSleep}
	result := f.Fetch(context.Background(), FetchRequest{URL: srv.URL, Now: time.Now()})

	if result.Outcome != FetchStored {
		t.Fatalf("Outcome = %v, want FetchStored", result.Outcome)
	}
	if string(result.Entry.Content) != "tile bytes" {
		t.Fatalf("Content = %q", result.Entry.Content)
	}
	if result.Attrs.ETag != `"v1"` {
		t.Fatalf("ETag = %q, want %q", result.Attrs.ETag, `"v1"`)
	}
}

func TestFetcherConditionalGetRevalidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		t.Fatal("expected a conditional request with If-None-Match set")
	}))
	defer srv.Close()

	f := &Fetcher{Transport: &HTTPTransport{}, Origins: NewOriginProfile(), Sleep: noSleep}
	result := f.Fetch(context.Background(), FetchRequest{
		URL:            srv.URL,
		Now:            time.Now(),
		HasCachedEntry: true,
		CachedLoadable: true,
		CachedAttrs:    Attributes{ETag: `"v1"`, LastModification: millis(time.Now())},
	})

	if result.Outcome != FetchRevalidated {
		t.Fatalf("Outcome = %v, want FetchRevalidated", result.Outcome)
	}
	if result.Attrs.ResponseCode != http.StatusNotModified {
		t.Fatalf("ResponseCode = %d, want 304", result.Attrs.ResponseCode)
	}
}

func TestFetcherDetectsNonCompliantOrigin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Origin ignores the validator and returns 200 with the same ETag.
		w.Header().Set("ETag", `"v1"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("tile bytes"))
	}))
	defer srv.Close()

	origins := NewOriginProfile()
	f := &Fetcher{Transport: &HTTPTransport{}, Origins: origins, Sleep: noSleep}
	f.Fetch(context.Background(), FetchRequest{
		URL:            srv.URL,
		Now:            time.Now(),
		HasCachedEntry: true,
		CachedLoadable: true,
		CachedAttrs:    Attributes{ETag: `"v1"`, LastModification: millis(time.Now())},
	})

	host := HostOf(srv.URL)
	if !origins.NeedsHeadProbe(host) {
		t.Fatal("origin returning 200 with an unchanged ETag should be marked non-compliant")
	}
}

func TestFetcherHeadProbeShortCircuitsGet(t *testing.T) {
	var getCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("ETag", `"v1"`)
			w.WriteHeader(http.StatusOK)
			return
		}
		getCalls++
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("should not be reached"))
	}))
	defer srv.Close()

	origins := NewOriginProfile()
	origins.MarkNonCompliant(HostOf(srv.URL))

	f := &Fetcher{Transport: &HTTPTransport{}, Origins: origins, Sleep: noSleep}
	result := f.Fetch(context.Background(), FetchRequest{
		URL:            srv.URL,
		Now:            time.Now(),
		HasCachedEntry: true,
		CachedLoadable: true,
		CachedAttrs:    Attributes{ETag: `"v1"`},
	})

	if result.Outcome != FetchRevalidated {
		t.Fatalf("Outcome = %v, want FetchRevalidated", result.Outcome)
	}
	if getCalls != 0 {
		t.Fatalf("GET should not have been issued after a successful HEAD probe, got %d calls", getCalls)
	}
}

func TestFetcherGivesUpAfter503s(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := &Fetcher{Transport: &HTTPTransport{}, Origins: NewOriginProfile(), Sleep: noSleep}
	result := f.Fetch(context.Background(), FetchRequest{URL: srv.URL, Now: time.Now()})

	if result.Outcome != FetchFailed {
		t.Fatalf("Outcome = %v, want FetchFailed", result.Outcome)
	}
	if attempts != MaxResponseIterations {
		t.Fatalf("attempts = %d, want %d", attempts, MaxResponseIterations)
	}
}

func TestFetcherFollowsRedirect(t *testing.T) {
	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	mux.HandleFunc("/redirected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("final content"))
	})
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/redirected", http.StatusFound)
	})

	f := &Fetcher{Transport: &HTTPTransport{}, Origins: NewOriginProfile(), Sleep: noSleep}
	result := f.Fetch(context.Background(), FetchRequest{URL: srv.URL + "/start", Now: time.Now()})

	if result.Outcome != FetchStored {
		t.Fatalf("Outcome = %v, want FetchStored", result.Outcome)
	}
	if string(result.Entry.Content) != "final content" {
		t.Fatalf("Content = %q", result.Entry.Content)
	}
}

func TestFetcherNonCacheableResponseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := &Fetcher{Transport: &HTTPTransport{}, Origins: NewOriginProfile(), Sleep: noSleep}
	result := f.Fetch(context.Background(), FetchRequest{URL: srv.URL, Now: time.Now()})

	if result.Outcome != FetchFailed {
		t.Fatalf("Outcome = %v, want FetchFailed", result.Outcome)
	}
	if result.Err == nil {
		t.Fatal("expected a non-nil error for a 500 response")
	}
}

func TestFetcherCacheAsEmptyFor404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := &Fetcher{Transport: &HTTPTransport{}, Origins: NewOriginProfile(), Sleep: noSleep}
	result := f.Fetch(context.Background(), FetchRequest{URL: srv.URL, Now: time.Now()})

	if result.Outcome != FetchStored {
		t.Fatalf("Outcome = %v, want FetchStored (404 should be negatively cached)", result.Outcome)
	}
	if result.Entry.Loadable() {
		t.Fatal("a negatively cached entry should not be Loadable")
	}
}
